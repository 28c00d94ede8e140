package enums

import (
	"fmt"
	"strings"
)

// MachineBrand names a supported embroidery machine vendor.
type MachineBrand string

const (
	BrandBrother   MachineBrand = "Brother"
	BrandJanome    MachineBrand = "Janome"
	BrandHusqvarna MachineBrand = "Husqvarna"
	BrandElna      MachineBrand = "Elna"
	BrandPfaff     MachineBrand = "Pfaff"
	BrandTajima    MachineBrand = "Tajima"
	BrandBarudan   MachineBrand = "Barudan"
	BrandSinger    MachineBrand = "Singer"
	BrandBabylock  MachineBrand = "Babylock"
	BrandMelco     MachineBrand = "Melco"
	BrandFortron   MachineBrand = "Fortron"
	BrandSunstar   MachineBrand = "Sunstar"
	BrandInbro     MachineBrand = "Inbro"
	BrandCompucon  MachineBrand = "Compucon"
	BrandHappy     MachineBrand = "Happy"
	BrandZSK       MachineBrand = "ZSK"
	BrandBernina   MachineBrand = "Bernina"
)

// brandFormats maps each brand to the formats its machines read, first entry
// being the usual default.
var brandFormats = map[MachineBrand][]FormatCode{
	BrandBrother:   {FormatPES, FormatPEC},
	BrandJanome:    {FormatJEF, FormatSEW},
	BrandHusqvarna: {FormatVIP, FormatVP3, FormatHUS},
	BrandElna:      {FormatJEF, FormatEXP},
	BrandPfaff:     {FormatVP3, FormatEXP, FormatPES},
	BrandTajima:    {FormatDST, FormatJEF, FormatEXP},
	BrandBarudan:   {FormatDSB, FormatDST, FormatEXP},
	BrandSinger:    {FormatXXX, FormatVIP},
	BrandBabylock:  {FormatPES, FormatDST},
	BrandMelco:     {FormatEXP, FormatDST},
	BrandFortron:   {FormatFDR},
	BrandSunstar:   {FormatSTX},
	BrandInbro:     {FormatEMT},
	BrandCompucon:  {FormatCMD},
	BrandHappy:     {FormatTAP},
	BrandZSK:       {FormatDSZ},
	BrandBernina:   {FormatPES, FormatEXP},
}

// String implements fmt.Stringer.
func (m MachineBrand) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MachineBrand.
func (m MachineBrand) IsValid() bool {
	_, ok := brandFormats[m]
	return ok
}

// SupportedFormats lists the formats the brand's machines accept.
func (m MachineBrand) SupportedFormats() []FormatCode {
	formats, ok := brandFormats[m]
	if !ok {
		return nil
	}
	out := make([]FormatCode, len(formats))
	copy(out, formats)
	return out
}

// Supports reports whether the brand's machines read the given format.
func (m MachineBrand) Supports(format FormatCode) bool {
	for _, candidate := range brandFormats[m] {
		if candidate == format {
			return true
		}
	}
	return false
}

// ParseMachineBrand converts raw input into a MachineBrand, case-insensitively.
func ParseMachineBrand(value string) (MachineBrand, error) {
	trimmed := strings.TrimSpace(value)
	for brand := range brandFormats {
		if strings.EqualFold(string(brand), trimmed) {
			return brand, nil
		}
	}
	return "", fmt.Errorf("invalid machine brand %q", value)
}

// MachineBrands lists every supported brand in stable order.
func MachineBrands() []MachineBrand {
	return []MachineBrand{
		BrandBrother,
		BrandJanome,
		BrandHusqvarna,
		BrandElna,
		BrandPfaff,
		BrandTajima,
		BrandBarudan,
		BrandSinger,
		BrandBabylock,
		BrandMelco,
		BrandFortron,
		BrandSunstar,
		BrandInbro,
		BrandCompucon,
		BrandHappy,
		BrandZSK,
		BrandBernina,
	}
}

package enums

import (
	"fmt"
	"strings"
)

// FormatCode is a machine-specific embroidery file format.
type FormatCode string

const (
	FormatDST FormatCode = "dst"
	FormatDSB FormatCode = "dsb"
	FormatDSZ FormatCode = "dsz"
	FormatEXP FormatCode = "exp"
	FormatTBF FormatCode = "tbf"
	FormatFDR FormatCode = "fdr"
	FormatSTX FormatCode = "stx"
	FormatPES FormatCode = "pes"
	FormatPEC FormatCode = "pec"
	FormatJEF FormatCode = "jef"
	FormatSEW FormatCode = "sew"
	FormatHUS FormatCode = "hus"
	FormatVIP FormatCode = "vip"
	FormatVP3 FormatCode = "vp3"
	FormatXXX FormatCode = "xxx"
	FormatCMD FormatCode = "cmd"
	FormatTAP FormatCode = "tap"
	FormatTIM FormatCode = "tim"
	FormatEMT FormatCode = "emt"
	Format10O FormatCode = "10o"
	FormatDS9 FormatCode = "ds9"
)

// DefaultFormat seeds the checkout format set when no cart item carries a
// requested format.
const DefaultFormat = FormatPES

// FormatCategory groups formats by machine class.
type FormatCategory string

const (
	FormatCategoryIndustrial FormatCategory = "Industrial"
	FormatCategoryDomestic   FormatCategory = "Domestic"
	FormatCategoryCommercial FormatCategory = "Commercial"
)

// FormatInfo carries display metadata for a format code.
type FormatInfo struct {
	Code     FormatCode
	Brand    string
	Category FormatCategory
}

var formatCatalog = []FormatInfo{
	{Code: FormatDST, Brand: "Tajima", Category: FormatCategoryIndustrial},
	{Code: FormatDSB, Brand: "Barudan", Category: FormatCategoryIndustrial},
	{Code: FormatDSZ, Brand: "ZSK", Category: FormatCategoryIndustrial},
	{Code: FormatEXP, Brand: "Melco", Category: FormatCategoryIndustrial},
	{Code: FormatTBF, Brand: "Barudan", Category: FormatCategoryIndustrial},
	{Code: FormatFDR, Brand: "Fortron", Category: FormatCategoryIndustrial},
	{Code: FormatSTX, Brand: "Sunstar", Category: FormatCategoryIndustrial},
	{Code: FormatPES, Brand: "Brother / Babylock", Category: FormatCategoryDomestic},
	{Code: FormatPEC, Brand: "Brother", Category: FormatCategoryDomestic},
	{Code: FormatJEF, Brand: "Janome / Elna", Category: FormatCategoryDomestic},
	{Code: FormatSEW, Brand: "Janome", Category: FormatCategoryDomestic},
	{Code: FormatHUS, Brand: "Husqvarna", Category: FormatCategoryDomestic},
	{Code: FormatVIP, Brand: "Husqvarna / Viking", Category: FormatCategoryDomestic},
	{Code: FormatVP3, Brand: "Husqvarna / Pfaff", Category: FormatCategoryDomestic},
	{Code: FormatXXX, Brand: "Singer", Category: FormatCategoryDomestic},
	{Code: FormatCMD, Brand: "Compucon", Category: FormatCategoryCommercial},
	{Code: FormatTAP, Brand: "Happy", Category: FormatCategoryCommercial},
	{Code: FormatTIM, Brand: "Tajima", Category: FormatCategoryCommercial},
	{Code: FormatEMT, Brand: "Inbro", Category: FormatCategoryCommercial},
	{Code: Format10O, Brand: "Barudan", Category: FormatCategoryCommercial},
	{Code: FormatDS9, Brand: "Tajima", Category: FormatCategoryCommercial},
}

// FormatCatalog returns display metadata for every supported format.
func FormatCatalog() []FormatInfo {
	out := make([]FormatInfo, len(formatCatalog))
	copy(out, formatCatalog)
	return out
}

// String implements fmt.Stringer.
func (f FormatCode) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FormatCode.
func (f FormatCode) IsValid() bool {
	for _, candidate := range formatCatalog {
		if candidate.Code == f {
			return true
		}
	}
	return false
}

// ParseFormatCode converts raw input into a FormatCode, case-insensitively.
func ParseFormatCode(value string) (FormatCode, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range formatCatalog {
		if string(candidate.Code) == normalized {
			return candidate.Code, nil
		}
	}
	return "", fmt.Errorf("invalid format code %q", value)
}

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stitchforge/embroidery-studio/internal/design"
)

var (
	generateBrand  string
	generateFormat string
	generateSize   int
)

var designCmd = &cobra.Command{
	Use:   "design",
	Short: "Work on the active design draft",
}

var designGenerateCmd = &cobra.Command{
	Use:   "generate <prompt...>",
	Short: "Generate an AI image for the draft (spends tokens)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDesignGenerate,
}

var designPreviewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render the embroidery preview for the generated draft",
	Args:  cobra.NoArgs,
	RunE:  runDesignPreview,
}

var designSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the draft's settings to the backend",
	Args:  cobra.NoArgs,
	RunE:  runDesignSave,
}

var designShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active draft",
	Args:  cobra.NoArgs,
	RunE:  runDesignShow,
}

var designClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Discard the draft and start fresh",
	Args:  cobra.NoArgs,
	RunE:  runDesignClear,
}

var designListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved designs",
	Args:  cobra.NoArgs,
	RunE:  runDesignList,
}

var designOpenCmd = &cobra.Command{
	Use:   "open <design-id>",
	Short: "Load a saved design into the draft",
	Args:  cobra.ExactArgs(1),
	RunE:  runDesignOpen,
}

var designDeleteCmd = &cobra.Command{
	Use:   "delete <design-id>",
	Short: "Delete a saved design",
	Args:  cobra.ExactArgs(1),
	RunE:  runDesignDelete,
}

var designFeaturesCmd = &cobra.Command{
	Use:   "features",
	Short: "List the features attached to the draft and the catalog",
	Args:  cobra.NoArgs,
	RunE:  runDesignFeatures,
}

var designFeatureAddCmd = &cobra.Command{
	Use:   "feature-add <feature-id>",
	Short: "Attach a feature to the draft (spends tokens)",
	Args:  cobra.ExactArgs(1),
	RunE:  runDesignFeatureAdd,
}

var designFeatureRemoveCmd = &cobra.Command{
	Use:   "feature-remove <feature-id>",
	Short: "Detach a feature from the draft",
	Args:  cobra.ExactArgs(1),
	RunE:  runDesignFeatureRemove,
}

func init() {
	designGenerateCmd.Flags().StringVar(&generateBrand, "brand", "", "machine brand (brother, janome, tajima, ...)")
	designGenerateCmd.Flags().StringVar(&generateFormat, "format", "", "file format (pes, jef, dst, ...)")
	designGenerateCmd.Flags().IntVar(&generateSize, "size", 0, "embroidery size in cm (1-100)")

	designCmd.AddCommand(
		designGenerateCmd, designPreviewCmd, designSaveCmd, designShowCmd,
		designClearCmd, designListCmd, designOpenCmd, designDeleteCmd,
		designFeaturesCmd, designFeatureAddCmd, designFeatureRemoveCmd,
	)
}

func runDesignGenerate(cmd *cobra.Command, args []string) error {
	if err := requireSignIn(cmd); err != nil {
		return err
	}

	if generateBrand != "" {
		if err := studio.Design.SetMachineBrand(cmd.Context(), generateBrand); err != nil {
			return err
		}
	}
	if generateFormat != "" {
		if err := studio.Design.SetFormat(cmd.Context(), generateFormat); err != nil {
			return err
		}
	}
	if generateSize != 0 {
		if err := studio.Design.SetSize(cmd.Context(), generateSize); err != nil {
			return err
		}
	}
	studio.Design.SetPrompt(strings.Join(args, " "))

	draft, err := studio.Design.Generate(cmd.Context())
	if err != nil {
		return err
	}

	printDraft(draft)
	fmt.Printf("Token balance: %d\n", studio.Tokens.Balance())
	return nil
}

func runDesignPreview(cmd *cobra.Command, _ []string) error {
	if err := requireSignIn(cmd); err != nil {
		return err
	}
	draft, err := studio.Design.GeneratePreview(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("Preview: %s\n", studio.Client.ResolveAssetURL(draft.EmbroideryPreview))
	return nil
}

func runDesignSave(cmd *cobra.Command, _ []string) error {
	if err := requireSignIn(cmd); err != nil {
		return err
	}
	message, err := studio.Design.Save(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Println(message)
	return nil
}

func runDesignShow(cmd *cobra.Command, _ []string) error {
	draft := studio.Design.Snapshot()
	printDraft(&draft)
	return nil
}

func runDesignClear(cmd *cobra.Command, _ []string) error {
	studio.Design.Clear(cmd.Context())
	fmt.Println("Draft cleared.")
	return nil
}

func runDesignList(cmd *cobra.Command, _ []string) error {
	if err := requireSignIn(cmd); err != nil {
		return err
	}
	designs, err := studio.Design.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(designs) == 0 {
		fmt.Println("No saved designs.")
		return nil
	}
	for _, d := range designs {
		name := d.Name
		if name == "" {
			name = truncate(d.Prompt, 40)
		}
		fmt.Printf("%6d  %-10s %-5s %3dcm  %s\n",
			d.ID, d.MachineBrand, d.RequestedFormat, d.EmbroiderySizeCm, name)
	}
	return nil
}

func runDesignOpen(cmd *cobra.Command, args []string) error {
	if err := requireSignIn(cmd); err != nil {
		return err
	}
	designID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid design id %q", args[0])
	}
	draft, err := studio.Design.Open(cmd.Context(), designID)
	if err != nil {
		return err
	}
	printDraft(draft)
	return nil
}

func runDesignDelete(cmd *cobra.Command, args []string) error {
	if err := requireSignIn(cmd); err != nil {
		return err
	}
	designID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid design id %q", args[0])
	}
	if err := studio.Design.Delete(cmd.Context(), designID); err != nil {
		return err
	}
	fmt.Println("Design deleted.")
	return nil
}

func runDesignFeatures(cmd *cobra.Command, _ []string) error {
	if err := requireSignIn(cmd); err != nil {
		return err
	}

	attached, err := studio.Design.Features(cmd.Context())
	if err == nil && len(attached) > 0 {
		fmt.Println("Attached:")
		for _, f := range attached {
			fmt.Printf("%6d  %-24s %d tokens\n", f.ID, f.Name, f.TokenCost)
		}
	}

	available, err := studio.Design.AvailableFeatures(cmd.Context())
	if err != nil {
		return err
	}
	if len(available) == 0 {
		fmt.Println("No features available.")
		return nil
	}
	fmt.Println("Available:")
	for _, f := range available {
		fmt.Printf("%6d  %-24s %d tokens  %s\n", f.ID, f.Name, f.TokenCost, f.Description)
	}
	return nil
}

func runDesignFeatureAdd(cmd *cobra.Command, args []string) error {
	if err := requireSignIn(cmd); err != nil {
		return err
	}
	featureID, err := parseID(args[0], "feature id")
	if err != nil {
		return err
	}
	if err := studio.Design.AttachFeature(cmd.Context(), featureID); err != nil {
		return err
	}
	fmt.Printf("Feature attached. Token balance: %d\n", studio.Tokens.Balance())
	return nil
}

func runDesignFeatureRemove(cmd *cobra.Command, args []string) error {
	if err := requireSignIn(cmd); err != nil {
		return err
	}
	featureID, err := parseID(args[0], "feature id")
	if err != nil {
		return err
	}
	if err := studio.Design.DetachFeature(cmd.Context(), featureID); err != nil {
		return err
	}
	fmt.Println("Feature removed.")
	return nil
}

func printDraft(draft *design.Draft) {
	if draft.ID != nil {
		fmt.Printf("Design #%d (%s)\n", *draft.ID, draft.State)
	} else {
		fmt.Printf("Unsaved draft (%s)\n", draft.State)
	}
	if draft.Prompt != "" {
		fmt.Printf("Prompt:  %s\n", draft.Prompt)
	}
	fmt.Printf("Machine: %s, format %s, %d cm\n",
		draft.MachineBrand, draft.RequestedFormat, draft.EmbroiderySizeCm)
	if draft.NormalImage != "" {
		fmt.Printf("Image:   %s\n", studio.Client.ResolveAssetURL(draft.NormalImage))
	}
	if draft.EmbroideryPreview != "" {
		fmt.Printf("Preview: %s\n", studio.Client.ResolveAssetURL(draft.EmbroideryPreview))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"dom-engine/internal/domain/entity"
)

var (
	opFile        string
	editOut       string
	shotOut       string
	fetchShotOut  string
	opInstruction string
	opSelector    string
	opEditType    string
	opEditValue   string
	opBounds      bool
	opFullPage    bool
	opURL         string
	opFocus       string
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Apply a plain-English instruction, or a direct edit with --selector and --type",
	Args:  cobra.NoArgs,
	RunE:  runEdit,
}

var domCmd = &cobra.Command{
	Use:   "dom",
	Short: "Print the simplified element tree of a document as JSON",
	Args:  cobra.NoArgs,
	RunE:  runDOM,
}

var screenshotCmd = &cobra.Command{
	Use:   "screenshot",
	Short: "Render a document and write an image of it or of one element",
	Args:  cobra.NoArgs,
	RunE:  runScreenshot,
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Load an external page and print its design summary",
	Args:  cobra.NoArgs,
	RunE:  runFetch,
}

func init() {
	rootCmd.AddCommand(editCmd, domCmd, screenshotCmd, fetchCmd)

	for _, c := range []*cobra.Command{editCmd, domCmd, screenshotCmd} {
		c.Flags().StringVarP(&opFile, "file", "f", "-", "HTML document to read, - for stdin")
	}

	editCmd.Flags().StringVarP(&opInstruction, "instruction", "i", "", "Instruction such as \"change the header text to Welcome\"")
	editCmd.Flags().StringVar(&opSelector, "selector", "", "CSS selector for a direct edit")
	editCmd.Flags().StringVar(&opEditType, "type", "", "Direct edit type: text, innerHTML, style, attribute, class, replace, hide, show")
	editCmd.Flags().StringVar(&opEditValue, "value", "", "Direct edit value as JSON")
	editCmd.Flags().StringVarP(&editOut, "out", "o", "-", "Where to write the edited document, - for stdout")

	domCmd.Flags().BoolVar(&opBounds, "bounds", false, "Include element bounding boxes")

	screenshotCmd.Flags().StringVar(&opSelector, "selector", "", "Capture only the first element matching this selector")
	screenshotCmd.Flags().BoolVar(&opFullPage, "full-page", true, "Capture the full scroll height")
	screenshotCmd.Flags().StringVarP(&shotOut, "out", "o", "", "Image file to write")
	_ = screenshotCmd.MarkFlagRequired("out")

	fetchCmd.Flags().StringVar(&opURL, "url", "", "Page to load")
	fetchCmd.Flags().StringVar(&opFocus, "focus", "", "Focus area, e.g. header, hero, colors, typography")
	fetchCmd.Flags().StringVarP(&fetchShotOut, "out", "o", "", "Also write a screenshot of the page here")
	_ = fetchCmd.MarkFlagRequired("url")
}

func runEdit(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	document, err := readDocument(cmd, opFile)
	if err != nil {
		return err
	}

	container, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer container.Close()

	if opSelector == "" {
		res, err := container.Engine.EditSimple(ctx, document, opInstruction)
		if err != nil {
			return err
		}
		if !res.Applied {
			fmt.Fprintln(cmd.ErrOrStderr(), "Instruction not recognised, document unchanged")
		}
		return writeOutput(cmd, editOut, []byte(res.HTML))
	}

	value := json.RawMessage(opEditValue)
	if opEditValue != "" && !json.Valid(value) {
		// Bare strings are accepted for the string-valued edit types.
		value, _ = json.Marshal(opEditValue)
	}
	op, err := entity.NewEditOperation(opEditType, value)
	if err != nil {
		return err
	}
	out, err := container.Engine.EditComponent(ctx, document, opSelector, op)
	if err != nil {
		return err
	}
	return writeOutput(cmd, editOut, []byte(out))
}

func runDOM(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	document, err := readDocument(cmd, opFile)
	if err != nil {
		return err
	}

	container, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer container.Close()

	tree, err := container.Engine.DOM(ctx, document, opBounds)
	if err != nil {
		return err
	}
	return printJSON(cmd, tree)
}

func runScreenshot(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	document, err := readDocument(cmd, opFile)
	if err != nil {
		return err
	}

	container, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer container.Close()

	shot, err := container.Engine.Screenshot(ctx, document, opSelector, opFullPage)
	if err != nil {
		return err
	}
	if err := os.WriteFile(shotOut, shot.Data, 0o644); err != nil {
		return fmt.Errorf("write screenshot: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s, %dx%d)\n", shotOut, shot.Format, shot.Width, shot.Height)
	return nil
}

func runFetch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	container, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer container.Close()

	res, err := container.Engine.FetchURL(ctx, entity.FetchRequest{
		URL:               opURL,
		CaptureScreenshot: fetchShotOut != "",
		ExtractDesign:     true,
		FocusArea:         opFocus,
	})
	if err != nil {
		return err
	}

	if res.Screenshot != nil {
		if err := os.WriteFile(fetchShotOut, res.Screenshot.Data, 0o644); err != nil {
			return fmt.Errorf("write screenshot: %w", err)
		}
	}
	return printJSON(cmd, res.Design)
}

func readDocument(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	return string(data), nil
}

func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

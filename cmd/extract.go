package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/paul-stiebitz/entity-extract/internal/extract"
	"github.com/paul-stiebitz/entity-extract/internal/model"
)

var (
	extractEntities string
	extractFile     string
	extractStream   bool
)

var extractCmd = &cobra.Command{
	Use:   "extract [text]",
	Short: "Extract entities from a single document",
	Long:  "Extracts entities from one email given as an argument, via --file, or on stdin. With --stream, tokens are printed as the model emits them.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		text, err := readDocumentText(args)
		if err != nil {
			return err
		}
		doc := model.Document{Index: 0, Text: text}

		set, err := resolveEntitySet(extractEntities)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if extractStream {
			return runStreamExtract(ctx, cmd.OutOrStdout(), env, doc, set)
		}

		res, err := env.Extractor.Extract(ctx, doc, set, model.ModeWhole)
		if err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), res)
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractEntities, "entities", "", "comma-separated entity types (default: full catalog)")
	extractCmd.Flags().StringVar(&extractFile, "file", "", "read the document from a file ('-' for stdin)")
	extractCmd.Flags().BoolVar(&extractStream, "stream", false, "print tokens as the model emits them")
	rootCmd.AddCommand(extractCmd)
}

// readDocumentText resolves the document source: positional argument, --file,
// or stdin.
func readDocumentText(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if extractFile == "" || extractFile == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", eris.Wrap(err, "read stdin")
		}
		return string(data), nil
	}
	data, err := os.ReadFile(extractFile)
	if err != nil {
		return "", eris.Wrapf(err, "read %s", extractFile)
	}
	return string(data), nil
}

// runStreamExtract renders tokens live, then validates the concatenated
// response. A response that fails validation is shown raw, like the model
// produced it.
func runStreamExtract(ctx context.Context, out io.Writer, env *env, doc model.Document, set model.EntityTypeSet) error {
	stream, err := env.Extractor.Stream(ctx, doc, set)
	if err != nil {
		return err
	}
	defer stream.Close()

	var b strings.Builder
	for {
		token, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		b.WriteString(token)
		fmt.Fprint(out, token)
	}
	fmt.Fprintln(out)

	entities, err := extract.ParseEntities(b.String(), set)
	if err != nil {
		zap.L().Warn("streamed response failed validation", zap.Error(err))
		return nil
	}

	fmt.Fprintln(out)
	return printResult(out, model.ExtractionResult{Index: doc.Index, Entities: entities})
}

func printResult(w io.Writer, res model.ExtractionResult) error {
	if !res.OK() {
		return eris.Errorf("document %d: %s: %s", res.Index, res.Failure, res.Reason)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(res.Entities), "encode result")
}

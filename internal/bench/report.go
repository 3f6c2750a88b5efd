package bench

import (
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/paul-stiebitz/entity-extract/internal/model"
)

// Report formats.
const (
	FormatText = "text"
	FormatYAML = "yaml"
)

// WriteReport renders sweep metrics to w. The text format pairs each
// streaming run with the batch run that follows it, headed by the batch
// concurrency level; yaml emits the raw metrics.
func WriteReport(w io.Writer, metrics []model.RunMetrics, format string) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		if err := enc.Encode(metrics); err != nil {
			return eris.Wrap(err, "bench: encode yaml report")
		}
		return nil
	case FormatText, "":
		return writeTextReport(w, metrics)
	default:
		return eris.Errorf("bench: unknown report format %q", format)
	}
}

func writeTextReport(w io.Writer, metrics []model.RunMetrics) error {
	i := 0
	for i < len(metrics) {
		// A sweep emits (stream, batch) pairs per level.
		if i+1 < len(metrics) && metrics[i].Mode == model.ModeStream && metrics[i+1].Mode == model.ModeWhole {
			sm, bm := metrics[i], metrics[i+1]
			if _, err := fmt.Fprintf(w, "SMT = %d\nNon Batch: %s\nBatch: %s\n",
				bm.Concurrency,
				model.FormatSeconds(sm.WallClock),
				model.FormatSeconds(bm.WallClock),
			); err != nil {
				return eris.Wrap(err, "bench: write report")
			}
			if sm.Failed+bm.Failed > 0 {
				if _, err := fmt.Fprintf(w, "Failures: non-batch %d/%d, batch %d/%d\n",
					sm.Failed, sm.DocCount, bm.Failed, bm.DocCount); err != nil {
					return eris.Wrap(err, "bench: write report")
				}
			}
			if _, err := fmt.Fprintln(w); err != nil {
				return eris.Wrap(err, "bench: write report")
			}
			i += 2
			continue
		}

		m := metrics[i]
		if _, err := fmt.Fprintf(w, "%s (concurrency %d): %s, %d/%d ok\n\n",
			m.Mode, m.Concurrency, model.FormatSeconds(m.WallClock), m.Succeeded, m.DocCount); err != nil {
			return eris.Wrap(err, "bench: write report")
		}
		i++
	}
	return nil
}

// Package dialog implements batch masking of dialog files: each file's
// volleys are masked, speakers are anonymized, timestamps are moved onto an
// anchor date, and masking statistics are added to dialog and file headers.
package dialog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/dativo-io/masker/internal/masker"
	"github.com/dativo-io/masker/internal/metrics"
	maskerotel "github.com/dativo-io/masker/internal/otel"
)

var tracer = maskerotel.Tracer("github.com/dativo-io/masker/internal/dialog")

// BlacklistFile is the report written to the output directory after a run.
const BlacklistFile = "blacklist.txt"

var (
	ErrInvalidFile   = errors.New("invalid dialog file")
	ErrMissingHeader = errors.New("dialog is missing a required header")
)

// EngineSource builds masking engines for a tenant and owns the blacklist
// they record into.
type EngineSource interface {
	Engine(ctx context.Context, tenantID string, maskNumbers *bool, templates []masker.TemplateSpec) (*masker.Engine, []*masker.Error)
	Blacklist() *masker.Blacklist
}

// Config selects the files of one batch run.
type Config struct {
	TenantID   string
	InputDir   string
	OutputDir  string
	Ext        string // without the dot, e.g. "json"
	MinDialogs int
}

// Summary totals a batch run. Dialogs and Counts cover every file that
// could be read, including dropped ones.
type Summary struct {
	RunID   string        `json:"runID"`
	Files   int           `json:"files"`
	Written int           `json:"written"`
	Dropped int           `json:"dropped"`
	Skipped int           `json:"skipped"`
	Dialogs int           `json:"dialogs"`
	Counts  masker.Counts `json:"counts"`
}

// Processor runs batch mode.
type Processor struct {
	src EngineSource
	cfg Config
	now func() time.Time
}

// Option configures a Processor.
type Option func(*Processor)

// WithClock sets the clock used to anchor files whose names carry no date.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// NewProcessor creates a Processor. MinDialogs below 1 is raised to 1 and
// an empty Ext means "json".
func NewProcessor(src EngineSource, cfg Config, opts ...Option) *Processor {
	if cfg.MinDialogs < 1 {
		cfg.MinDialogs = 1
	}
	cfg.Ext = strings.TrimPrefix(cfg.Ext, ".")
	if cfg.Ext == "" {
		cfg.Ext = "json"
	}
	p := &Processor{src: src, cfg: cfg, now: time.Now}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Run masks every file in the input directory, in name order, and writes
// the blacklist report. Unreadable or invalid files are logged and skipped.
func (p *Processor) Run(ctx context.Context) (*Summary, error) {
	ctx, span := tracer.Start(ctx, "dialog.run")
	defer span.End()
	sum := &Summary{RunID: uuid.New().String()}
	span.SetAttributes(maskerotel.TenantID.String(p.cfg.TenantID), attribute.String("masker.run_id", sum.RunID))

	e, errs := p.src.Engine(ctx, p.cfg.TenantID, nil, nil)
	if e == nil {
		err := fmt.Errorf("tenant %s: %s", p.cfg.TenantID, errs[0].Message)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	for _, pe := range errs {
		log.Warn().Str("tenant_id", p.cfg.TenantID).Str("error", pe.Error()).Msg("tenant_template_skipped")
	}

	files, err := p.inputFiles()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := os.MkdirAll(p.cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		sum.Files++
		res, err := p.processFile(ctx, e, path)
		switch {
		case err != nil:
			sum.Skipped++
			metrics.RecordBatchFile("skipped")
			log.Warn().Err(err).Str("file", path).Str("run_id", sum.RunID).Msg("dialog_file_skipped")
			continue
		case res.written:
			sum.Written++
			metrics.RecordBatchFile("written")
			log.Info().
				Str("file", res.output).
				Int("dialogs", res.dialogs).
				Int64("masked", res.counts.Masked()).
				Int64("words", res.counts.Words).
				Str("pct_masked", res.counts.Pct()).
				Msg("dialog_file_written")
		default:
			sum.Dropped++
			metrics.RecordBatchFile("dropped")
			log.Warn().
				Str("file", path).
				Int("dialogs", res.dialogs).
				Int("min_dialogs", p.cfg.MinDialogs).
				Msg("not_enough_dialogs")
		}
		sum.Dialogs += res.dialogs
		sum.Counts.Add(res.counts)
	}

	if err := p.writeBlacklist(); err != nil {
		return sum, err
	}
	metrics.RecordCounts(p.cfg.TenantID, sum.Counts)
	span.SetAttributes(maskerotel.CountsAttributes(sum.Counts)...)
	log.Info().
		Str("run_id", sum.RunID).
		Str("tenant_id", p.cfg.TenantID).
		Int("files", sum.Files).
		Int("written", sum.Written).
		Int("dropped", sum.Dropped).
		Int("skipped", sum.Skipped).
		Int("dialogs", sum.Dialogs).
		Int64("words", sum.Counts.Words).
		Int64("masked", sum.Counts.Masked()).
		Str("pct_masked", sum.Counts.Pct()).
		Msg("batch_complete")
	return sum, nil
}

func (p *Processor) inputFiles() ([]string, error) {
	entries, err := os.ReadDir(p.cfg.InputDir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory: %w", err)
	}
	var files []string
	for _, ent := range entries {
		if ent.IsDir() || !strings.HasSuffix(ent.Name(), "."+p.cfg.Ext) {
			continue
		}
		files = append(files, filepath.Join(p.cfg.InputDir, ent.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func (p *Processor) writeBlacklist() error {
	f, err := os.Create(filepath.Join(p.cfg.OutputDir, BlacklistFile))
	if err != nil {
		return fmt.Errorf("creating blacklist report: %w", err)
	}
	if err := p.src.Blacklist().WriteReport(f); err != nil {
		f.Close()
		return fmt.Errorf("writing blacklist report: %w", err)
	}
	return f.Close()
}

type fileResult struct {
	dialogs int
	counts  masker.Counts
	written bool
	output  string
}

func (p *Processor) processFile(ctx context.Context, e *masker.Engine, path string) (*fileResult, error) {
	_, span := tracer.Start(ctx, "dialog.file")
	defer span.End()
	span.SetAttributes(attribute.String("masker.file", filepath.Base(path)))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := ValidateFile(data); err != nil {
		span.SetStatus(codes.Error, "invalid dialog file")
		return nil, err
	}
	var doc map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	header, _ := doc["header"].(map[string]any)
	if header == nil {
		header = map[string]any{}
	}
	dialogs, _ := doc["dialogs"].([]any)
	tl := NewTimeline(AnchorFromFileName(path, p.cfg.Ext, p.now()))

	res := &fileResult{}
	masked := make([]any, 0, len(dialogs))
	for i, d := range dialogs {
		dlg, _ := d.(map[string]any)
		md, counts, err := maskDialog(e, tl, dlg)
		if err != nil {
			return nil, fmt.Errorf("dialog %d: %w", i, err)
		}
		if md == nil {
			continue
		}
		masked = append(masked, md)
		res.counts.Add(counts)
	}
	res.dialogs = len(masked)

	header["fileWords"] = res.counts.Words
	header["fileMasked"] = res.counts.Masked()
	header["fileMaskedBad"] = res.counts.MaskedBad
	header["fileMaskedGeo"] = res.counts.MaskedGeo
	header["fileMaskedMisc"] = res.counts.MaskedMisc
	header["fileMaskedNam"] = res.counts.MaskedName
	header["fileMaskedNum"] = res.counts.MaskedNum
	header["fileMaskedURL"] = res.counts.MaskedURL
	header["filePctMasked"] = res.counts.Pct()
	span.SetAttributes(attribute.Int("masker.dialogs", res.dialogs))
	span.SetAttributes(maskerotel.CountsAttributes(res.counts)...)

	if res.dialogs == 0 || res.dialogs < p.cfg.MinDialogs {
		return res, nil
	}
	out, err := json.MarshalIndent(map[string]any{"header": header, "dialogs": masked}, "", "  ")
	if err != nil {
		return nil, err
	}
	res.output = filepath.Join(p.cfg.OutputDir, filepath.Base(path))
	if err := os.WriteFile(res.output, append(out, '\n'), 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", res.output, err)
	}
	res.written = true
	return res, nil
}

// maskDialog masks one dialog, rewriting its header in place. It returns nil
// when the dialog has no content.
func maskDialog(e *masker.Engine, tl *Timeline, dlg map[string]any) (map[string]any, masker.Counts, error) {
	var counts masker.Counts
	content, _ := dlg["dialogContent"].(map[string]any)
	if content == nil {
		return nil, counts, nil
	}
	header, _ := dlg["dialogHeader"].(map[string]any)
	if header == nil {
		return nil, counts, fmt.Errorf("%w: dialogHeader", ErrMissingHeader)
	}
	if _, ok := header["sessionID"].(string); !ok {
		return nil, counts, fmt.Errorf("%w: sessionID", ErrMissingHeader)
	}

	start, _ := header["conversationDateTime"].(string)
	startAt, _ := ParseTimestamp(start)
	header["conversationDateTime"] = tl.Start(startAt).Format(HeaderLayout)
	delete(header, "agentEmails")
	delete(header, "clientEmail")

	volleys, _ := content["dialog"].([]any)
	out := make([]any, 0, len(volleys))
	for _, v := range volleys {
		volley, _ := v.(map[string]any)
		if volley == nil {
			continue
		}
		if raw, ok := volley["datetime"].(string); ok {
			if at, ok := ParseTimestamp(raw); ok {
				volley["datetime"] = tl.Next(at).UTC().Format(VolleyLayout)
			} else {
				log.Debug().Str("datetime", raw).Msg("volley_datetime_unparsed")
			}
		}
		out = append(out, maskVolley(e, volley, &counts))
	}

	header["words"] = counts.Words
	header["maskedBad"] = counts.MaskedBad
	header["maskedGeo"] = counts.MaskedGeo
	header["maskedMisc"] = counts.MaskedMisc
	header["maskedName"] = counts.MaskedName
	header["maskedNum"] = counts.MaskedNum
	header["maskedURL"] = counts.MaskedURL
	header["pctMasked"] = counts.Pct()

	return map[string]any{
		"dialogHeader":  header,
		"dialogContent": map[string]any{"dialog": out},
	}, counts, nil
}

// maskVolley keeps the agent id, replaces any other speaker with a name
// placeholder, and masks the message.
func maskVolley(e *masker.Engine, volley map[string]any, counts *masker.Counts) map[string]any {
	out := make(map[string]any, 5)
	nameMask := masker.CategoryName.Placeholder()
	switch {
	case volley["agent"] != nil:
		out["agent"] = volley["agent"]
	case volley["bot"] != nil:
		out["bot"] = nameMask
	case volley["system"] != nil:
		out["system"] = nameMask
	default:
		out["client"] = nameMask
	}
	out["datetime"] = volley["datetime"]
	msg, _ := volley["message"].(string)
	out["message"] = e.Mask(msg, counts)
	if turn, ok := volley["turn"]; ok && turn != nil {
		out["turn"] = turn
	}
	if skill, ok := volley["skill"].(string); ok {
		out["skill"] = skill
	}
	return out
}

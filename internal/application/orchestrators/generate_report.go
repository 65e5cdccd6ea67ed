package orchestrators

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"athleteportal/internal/adapters/email"
	"athleteportal/internal/domain/athlete"
	"athleteportal/internal/domain/entitlement"
	"athleteportal/internal/domain/report"
)

// reportRenderer converts report Markdown to HTML. Raw HTML in coach notes is
// escaped because WithUnsafe is not set.
var reportRenderer = goldmark.New(
	goldmark.WithExtensions(extension.Table),
	goldmark.WithRendererOptions(goldmarkHTML.WithHardWraps()),
)

// RosterSource exposes the current working set snapshot.
type RosterSource interface {
	Current() *athlete.Roster
}

// ReportStoreForGenerate persists generated reviews.
type ReportStoreForGenerate interface {
	Save(ctx context.Context, value report.Review) error
}

// GenerateReportInput carries the coach review for one athlete.
type GenerateReportInput struct {
	Key      string // athlete id or email
	AuthorID string
	Score    int
	Notes    string
	EmailTo  string // optional
}

// GenerateReportResult is the stored review and the resolution it was gated on.
type GenerateReportResult struct {
	Review     report.Review
	Markdown   string
	Resolution entitlement.Resolution
}

// GenerateReportDeps holds dependencies for GenerateReport.
// Sender may be nil when EmailTo is never set.
type GenerateReportDeps struct {
	Roster      RosterSource
	Policy      *entitlement.Policy
	ReportStore ReportStoreForGenerate
	Sender      email.Sender
	Now         func() time.Time
	GenerateID  func() string
}

var (
	ErrReportNotPermitted = errors.New("athlete is not entitled to performance reports")
	ErrInvalidRecipient   = errors.New("report recipient email is invalid")
	ErrReportDelivery     = errors.New("report saved but email delivery failed")
)

// ExecuteGenerateReport renders and stores a performance report for an athlete.
// PRE: Key identifies a record in the current working set
// POST: Review persisted; emailed when EmailTo is set
// INVARIANT: No report is produced unless the resolution grants ShowReports
func ExecuteGenerateReport(ctx context.Context, input GenerateReportInput, deps GenerateReportDeps) (GenerateReportResult, error) {
	rec, err := deps.Roster.Current().Lookup(input.Key)
	if err != nil {
		return GenerateReportResult{}, err
	}

	policy := deps.Policy
	if policy == nil {
		policy = entitlement.DefaultPolicy()
	}
	res := policy.Resolve(rec)
	if res.Gate.IsBlocked() || !res.Capabilities.ShowReports {
		slog.Info("report_denied", "athlete_id", rec.ID, "gate", res.Gate.String(), "author", input.AuthorID)
		return GenerateReportResult{Resolution: res}, ErrReportNotPermitted
	}

	var recipient string
	if strings.TrimSpace(input.EmailTo) != "" {
		addr, err := mail.ParseAddress(input.EmailTo)
		if err != nil {
			return GenerateReportResult{}, ErrInvalidRecipient
		}
		recipient = addr.Address
	}

	review := report.Review{
		ID:          deps.GenerateID(),
		AthleteID:   rec.ID,
		AuthorID:    input.AuthorID,
		Score:       input.Score,
		Notes:       strings.TrimSpace(input.Notes),
		GeneratedAt: deps.Now(),
	}
	if err := review.Validate(); err != nil {
		return GenerateReportResult{}, err
	}

	md := reportMarkdown(rec, review, res.Capabilities)
	var buf bytes.Buffer
	if err := reportRenderer.Convert([]byte(md), &buf); err != nil {
		return GenerateReportResult{}, fmt.Errorf("render report: %w", err)
	}
	review.HTML = buf.String()

	if err := deps.ReportStore.Save(ctx, review); err != nil {
		return GenerateReportResult{}, fmt.Errorf("save report: %w", err)
	}

	result := GenerateReportResult{Review: review, Markdown: md, Resolution: res}

	if recipient != "" {
		receipt, err := deps.Sender.Send(ctx, email.Message{
			To:      []string{recipient},
			Subject: "Performance report: " + rec.Name,
			HTML:    review.HTML,
			Tags:    map[string]string{"kind": "performance_report"},
		})
		if err != nil {
			slog.Error("report_email_failed", "review_id", review.ID, "to", recipient, "err", err)
			return result, fmt.Errorf("%w: %v", ErrReportDelivery, err)
		}
		review.EmailedTo = recipient
		review.MessageID = receipt.MessageID
		if err := deps.ReportStore.Save(ctx, review); err != nil {
			return result, fmt.Errorf("record delivery: %w", err)
		}
		result.Review = review
	}

	slog.Info("report_generated",
		"review_id", review.ID,
		"athlete_id", rec.ID,
		"author", input.AuthorID,
		"score", review.Score,
		"emailed", review.EmailedTo != "",
	)
	return result, nil
}

// reportMarkdown lays out the report. Metrics are listed only when the
// athlete is entitled to advanced metrics.
func reportMarkdown(rec athlete.Record, review report.Review, caps entitlement.CapabilitySet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Performance report: %s\n\n", mdEscape(rec.Name))
	if tier := strings.TrimSpace(rec.Tier()); tier != "" {
		fmt.Fprintf(&b, "**Programme:** %s\n", mdEscape(tier))
	}
	fmt.Fprintf(&b, "**Generated:** %s\n\n", review.GeneratedAt.Format("2 Jan 2006"))

	b.WriteString("## Coach review\n\n")
	fmt.Fprintf(&b, "**Score:** %d/100 (%s)\n\n", review.Score, review.Band())
	if review.Notes != "" {
		b.WriteString(review.Notes)
		b.WriteString("\n\n")
	}

	if !caps.ShowAdvancedMetrics {
		return b.String()
	}
	b.WriteString("## Metrics\n\n")
	if len(rec.Metrics) == 0 {
		b.WriteString("No metrics recorded.\n")
		return b.String()
	}
	names := make([]string, 0, len(rec.Metrics))
	for name := range rec.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	b.WriteString("| Metric | Value |\n|---|---|\n")
	for _, name := range names {
		fmt.Fprintf(&b, "| %s | %s |\n", mdEscape(name), strconv.FormatFloat(rec.Metrics[name], 'f', -1, 64))
	}
	return b.String()
}

var mdReplacer = strings.NewReplacer(`|`, `\|`, `*`, `\*`, `_`, `\_`, "`", "\\`", `#`, `\#`, `[`, `\[`, `]`, `\]`, "\n", " ")

func mdEscape(s string) string {
	return mdReplacer.Replace(strings.TrimSpace(s))
}

package pdf

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/go-pdf/fpdf"

	ports "guardian-audit-service/internal/core/ports/output"
)

const margin = 15.0

type renderer struct{}

// NewRenderer creates the compliance report renderer. Output is a compact
// black-and-white A4 document.
func NewRenderer() ports.ReportRenderer {
	return &renderer{}
}

func (r *renderer) Render(data *ports.ReportData) ([]byte, error) {
	audit := data.Audit

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle(fmt.Sprintf("Guardian Audit Report - %s", audit.ModelName), false)
	doc.SetAuthor("Guardian ML Audit Platform", false)
	doc.SetMargins(margin, margin, margin)
	doc.AddPage()

	pageWidth, _ := doc.GetPageSize()
	contentWidth := pageWidth - 2*margin

	// Header
	doc.SetFont("Helvetica", "B", 18)
	doc.CellFormat(contentWidth, 10, "GUARDIAN", "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(contentWidth, 5, "AI Ethics Compliance Report", "", 1, "L", false, 0, "")
	doc.Ln(4)
	doc.SetDrawColor(0, 0, 0)
	doc.Line(margin, doc.GetY(), pageWidth-margin, doc.GetY())
	doc.Ln(4)

	// Audit summary
	completed := ""
	if audit.CompletedAt != nil {
		completed = audit.CompletedAt.Format(time.RFC1123)
	}
	r.fieldRow(doc, contentWidth, "Model", audit.ModelName)
	r.fieldRow(doc, contentWidth, "Framework", orDash(audit.ModelFramework))
	r.fieldRow(doc, contentWidth, "Audit ID", audit.ID.String())
	r.fieldRow(doc, contentWidth, "Audit Type", string(audit.AuditType))
	r.fieldRow(doc, contentWidth, "Completed", completed)
	r.fieldRow(doc, contentWidth, "Requested By", orDash(data.RequestedBy))
	doc.Ln(6)

	// Scores
	doc.SetFont("Helvetica", "B", 12)
	doc.CellFormat(contentWidth, 8, "Compliance Scores", "B", 1, "L", false, 0, "")
	doc.Ln(2)
	r.scoreRow(doc, contentWidth, "Overall Compliance", audit.ComplianceScore)
	r.scoreRow(doc, contentWidth, "Bias Score", audit.BiasScore)
	r.scoreRow(doc, contentWidth, "Fairness Score", audit.FairnessScore)
	doc.Ln(6)

	r.metricsSection(doc, contentWidth, "Fairness Metrics", audit.Results, "fairness_metrics")
	r.metricsSection(doc, contentWidth, "Bias Metrics", audit.Results, "bias_metrics")
	r.listSection(doc, contentWidth, "Warnings", audit.Results, "warnings")
	r.listSection(doc, contentWidth, "Recommendations", audit.Results, "recommendations")

	// Footer
	doc.SetY(-25)
	doc.SetFont("Helvetica", "I", 8)
	doc.SetTextColor(102, 102, 102)
	doc.CellFormat(contentWidth, 5,
		fmt.Sprintf("Generated by Guardian ML Audit Platform on %s", time.Now().Format("2006-01-02 15:04")),
		"T", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *renderer) fieldRow(doc *fpdf.Fpdf, width float64, label, value string) {
	doc.SetFont("Helvetica", "B", 10)
	doc.CellFormat(width*0.3, 6, label, "", 0, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(width*0.7, 6, value, "", 1, "L", false, 0, "")
}

func (r *renderer) scoreRow(doc *fpdf.Fpdf, width float64, label string, score *float64) {
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(width*0.5, 7, label, "", 0, "L", false, 0, "")
	if score == nil {
		doc.CellFormat(width*0.5, 7, "-", "", 1, "L", false, 0, "")
		return
	}
	doc.CellFormat(width*0.25, 7, fmt.Sprintf("%.1f / 100", *score), "", 0, "L", false, 0, "")
	doc.SetFont("Helvetica", "B", 10)
	doc.CellFormat(width*0.25, 7, scoreBand(*score), "", 1, "R", false, 0, "")
}

func (r *renderer) metricsSection(doc *fpdf.Fpdf, width float64, title string, results map[string]interface{}, key string) {
	metrics, ok := results[key].(map[string]interface{})
	if !ok || len(metrics) == 0 {
		return
	}

	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	doc.SetFont("Helvetica", "B", 12)
	doc.CellFormat(width, 8, title, "B", 1, "L", false, 0, "")
	doc.Ln(2)
	doc.SetFont("Helvetica", "", 9)
	for _, name := range names {
		value, ok := metrics[name].(float64)
		if !ok {
			continue
		}
		doc.CellFormat(width*0.6, 6, name, "", 0, "L", false, 0, "")
		doc.CellFormat(width*0.4, 6, fmt.Sprintf("%.4f", value), "", 1, "R", false, 0, "")
	}
	doc.Ln(5)
}

func (r *renderer) listSection(doc *fpdf.Fpdf, width float64, title string, results map[string]interface{}, key string) {
	items, ok := results[key].([]interface{})
	if !ok || len(items) == 0 {
		return
	}

	doc.SetFont("Helvetica", "B", 12)
	doc.CellFormat(width, 8, title, "B", 1, "L", false, 0, "")
	doc.Ln(2)
	doc.SetFont("Helvetica", "", 9)
	for _, item := range items {
		text, ok := item.(string)
		if !ok {
			continue
		}
		doc.MultiCell(width, 5, "- "+text, "", "L", false)
	}
	doc.Ln(5)
}

func scoreBand(score float64) string {
	switch {
	case score >= 80:
		return "PASS"
	case score >= 60:
		return "WARNING"
	default:
		return "FAIL"
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

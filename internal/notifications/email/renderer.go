package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	texttemplate "text/template"
	"time"

	"assettrack/internal/types"
)

//go:embed templates/*.html templates/*.txt
var templateFS embed.FS

// RenderedEmail holds the pre-rendered email content ready for transmission.
type RenderedEmail struct {
	Subject  string
	BodyHTML string
	BodyText string
}

// warrantyTemplateData is the struct passed into the warranty alert templates.
type warrantyTemplateData struct {
	Headline  string
	Intro     string
	TierClass string
	Assets    []warrantyAssetRow
}

type warrantyAssetRow struct {
	AssetTag        string
	Name            string
	SerialNumber    string
	WarrantyEndDate string
	DaysLabel       string
	AssignedTo      string
}

// assignmentTemplateData is the struct passed into the assignment templates.
type assignmentTemplateData struct {
	AssetTag     string
	Name         string
	SerialNumber string
	AssignedDate string
}

// tierHeadlines maps each alertable tier to its subject line and intro copy.
var tierHeadlines = map[types.WarrantyTier]struct {
	subject string
	intro   string
}{
	types.TierExpired: {
		subject: "Warranty EXPIRED",
		intro:   "The warranty on the following equipment has expired. Plan replacement or an extended support contract.",
	},
	types.TierCritical: {
		subject: "Warranty expiring within 30 days",
		intro:   "The warranty on the following equipment expires within 30 days. Act now if coverage matters for these devices.",
	},
	types.TierWarning: {
		subject: "Warranty expiring within 90 days",
		intro:   "The warranty on the following equipment expires within 90 days.",
	},
}

// Renderer performs email template rendering using Go's html/template with
// embedded template files. Rendering happens client-side: the provider
// receives finished Subject/BodyHTML/BodyText content.
type Renderer struct {
	htmlWarranty   *template.Template
	textWarranty   *texttemplate.Template
	htmlAssignment *template.Template
	textAssignment *texttemplate.Template
}

// NewRenderer parses the embedded templates and returns a Renderer.
// Returns an error if any template fails to parse.
func NewRenderer() (*Renderer, error) {
	baseHTML, err := templateFS.ReadFile("templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("renderer: failed to read base.html: %w", err)
	}

	parseHTML := func(name string) (*template.Template, error) {
		content, err := templateFS.ReadFile("templates/" + name + ".html")
		if err != nil {
			return nil, fmt.Errorf("renderer: failed to read %s.html: %w", name, err)
		}
		tmpl, err := template.New("base").Parse(string(baseHTML))
		if err != nil {
			return nil, fmt.Errorf("renderer: failed to parse base.html: %w", err)
		}
		if _, err := tmpl.Parse(string(content)); err != nil {
			return nil, fmt.Errorf("renderer: failed to parse %s.html: %w", name, err)
		}
		return tmpl, nil
	}

	parseText := func(name string) (*texttemplate.Template, error) {
		content, err := templateFS.ReadFile("templates/" + name + ".txt")
		if err != nil {
			return nil, fmt.Errorf("renderer: failed to read %s.txt: %w", name, err)
		}
		tmpl, err := texttemplate.New(name).Parse(string(content))
		if err != nil {
			return nil, fmt.Errorf("renderer: failed to parse %s.txt: %w", name, err)
		}
		return tmpl, nil
	}

	r := &Renderer{}
	if r.htmlWarranty, err = parseHTML("warranty_alert"); err != nil {
		return nil, err
	}
	if r.textWarranty, err = parseText("warranty_alert"); err != nil {
		return nil, err
	}
	if r.htmlAssignment, err = parseHTML("assignment"); err != nil {
		return nil, err
	}
	if r.textAssignment, err = parseText("assignment"); err != nil {
		return nil, err
	}
	return r, nil
}

// RenderWarrantyAlert renders one batched alert email for a tier.
func (r *Renderer) RenderWarrantyAlert(tier types.WarrantyTier, assets []types.WarrantySummaryItem) (RenderedEmail, error) {
	head, ok := tierHeadlines[tier]
	if !ok {
		return RenderedEmail{}, fmt.Errorf("renderer: no template copy for tier %q", tier)
	}

	data := warrantyTemplateData{
		Headline:  head.subject,
		Intro:     head.intro,
		TierClass: string(tier),
	}
	for _, a := range assets {
		data.Assets = append(data.Assets, warrantyAssetRow{
			AssetTag:        a.AssetTag,
			Name:            a.Name,
			SerialNumber:    a.SerialNumber,
			WarrantyEndDate: a.WarrantyEnd.Format("2006-01-02"),
			DaysLabel:       daysLabel(a.DaysRemaining),
			AssignedTo:      a.AssignedTo,
		})
	}

	var htmlBuf, textBuf bytes.Buffer
	if err := r.htmlWarranty.ExecuteTemplate(&htmlBuf, "base", data); err != nil {
		return RenderedEmail{}, fmt.Errorf("renderer: warranty html: %w", err)
	}
	if err := r.textWarranty.Execute(&textBuf, data); err != nil {
		return RenderedEmail{}, fmt.Errorf("renderer: warranty text: %w", err)
	}

	subject := fmt.Sprintf("%s: %d asset(s)", head.subject, len(assets))
	return RenderedEmail{
		Subject:  subject,
		BodyHTML: htmlBuf.String(),
		BodyText: textBuf.String(),
	}, nil
}

// RenderAssignmentNotice renders the "equipment assigned" email.
func (r *Renderer) RenderAssignmentNotice(asset types.Asset, assignedDate time.Time) (RenderedEmail, error) {
	data := assignmentTemplateData{
		AssetTag:     asset.AssetTag,
		Name:         asset.Name,
		SerialNumber: asset.SerialNumber,
		AssignedDate: assignedDate.Format("2006-01-02"),
	}

	var htmlBuf, textBuf bytes.Buffer
	if err := r.htmlAssignment.ExecuteTemplate(&htmlBuf, "base", data); err != nil {
		return RenderedEmail{}, fmt.Errorf("renderer: assignment html: %w", err)
	}
	if err := r.textAssignment.Execute(&textBuf, data); err != nil {
		return RenderedEmail{}, fmt.Errorf("renderer: assignment text: %w", err)
	}

	return RenderedEmail{
		Subject:  fmt.Sprintf("Equipment assigned: %s %s", asset.AssetTag, asset.Name),
		BodyHTML: htmlBuf.String(),
		BodyText: textBuf.String(),
	}, nil
}

// daysLabel renders the remaining-days column of an alert row.
func daysLabel(days int) string {
	switch {
	case days < 0:
		return fmt.Sprintf("expired %dd ago", -days)
	case days == 0:
		return "expires today"
	default:
		return fmt.Sprintf("%dd left", days)
	}
}

package console

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/kailas-cloud/staysearch/internal/domain"
	domlisting "github.com/kailas-cloud/staysearch/internal/domain/listing"
	"github.com/kailas-cloud/staysearch/internal/domain/search/result"
)

const (
	amenitiesPerLine = 3
	separatorWidth   = 80
)

// Theme defines the console colors.
type Theme struct {
	Primary lipgloss.Color
	Dim     lipgloss.Color
	Good    lipgloss.Color
	Warn    lipgloss.Color
}

// DefaultTheme is the standard console theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
	Good:    lipgloss.Color("#3fb950"),
	Warn:    lipgloss.Color("#d29922"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Title lipgloss.Style
	Label lipgloss.Style
	Rule  lipgloss.Style
	Help  lipgloss.Style
	Good  lipgloss.Style
	Warn  lipgloss.Style
}

// NewStyles creates styles bound to r. Color support is detected on the
// renderer's writer, so a non-terminal output gets plain text.
func NewStyles(r *lipgloss.Renderer, t Theme) Styles {
	return Styles{
		Title: r.NewStyle().Bold(true).Foreground(t.Primary),
		Label: r.NewStyle().Bold(true),
		Rule:  r.NewStyle().Foreground(t.Dim),
		Help:  r.NewStyle().Foreground(t.Dim),
		Good:  r.NewStyle().Foreground(t.Good),
		Warn:  r.NewStyle().Foreground(t.Warn),
	}
}

// Printer writes search output to the console.
type Printer struct {
	w      io.Writer
	styles Styles
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, styles: NewStyles(lipgloss.NewRenderer(w), DefaultTheme)}
}

// Banner prints the greeting shown before the first prompt.
func (p *Printer) Banner() {
	p.line(p.styles.Title.Render("StaySearch: vector search over listings"))
	p.line(p.styles.Help.Render("Enter a description to search for similar listings, or 'quit' to exit."))
}

// Prompt writes a prompt without a trailing newline.
func (p *Printer) Prompt(text string) {
	fmt.Fprint(p.w, text)
}

// Warn prints a warning line.
func (p *Printer) Warn(format string, args ...any) {
	p.line(p.styles.Warn.Render(fmt.Sprintf(format, args...)))
}

// Comparison prints both branches and the timing comparison.
func (p *Printer) Comparison(c result.Comparison) {
	p.Branch(c.Flat)
	p.Branch(c.HNSW)

	p.line("")
	p.line(p.styles.Title.Render("=== Performance Comparison ==="))
	p.line(fmt.Sprintf("FLAT Search Time:  %s", seconds(c.Flat.Elapsed())))
	p.line(fmt.Sprintf("HNSW Search Time:  %s", seconds(c.HNSW.Elapsed())))
	if ratio, ok := c.SpeedRatio(); ok {
		p.line(fmt.Sprintf("Speed Difference:  %.2fx faster with HNSW", ratio))
	} else {
		p.line("Speed Difference:  n/a (HNSW time too small to compare)")
	}
}

// Usage prints how the query embedding was obtained.
func (p *Printer) Usage(u *domain.EmbeddingUsage) {
	switch {
	case u == nil || u.Calls == 0:
		return
	case u.CacheHits == u.Calls:
		p.line(p.styles.Help.Render("Query embedding: cached"))
	default:
		p.line(p.styles.Help.Render(fmt.Sprintf("Query embedding: %d tokens", u.TotalTokens)))
	}
}

// Branch prints one algorithm's results.
func (p *Printer) Branch(b result.Branch) {
	p.line("")
	p.line(p.styles.Title.Render(fmt.Sprintf("=== %s Search ===", b.Algorithm())))
	p.line(fmt.Sprintf("Search Time: %s", seconds(b.Elapsed())))

	for _, s := range b.Skipped() {
		p.Warn("Warning: Error processing %s for listing %s", s.Field, s.ID)
	}
	for _, h := range b.Hits() {
		p.hit(h)
	}

	p.rule()
	if len(b.Hits()) == 0 {
		p.line("\nNo results found matching all criteria.")
		return
	}
	p.line(fmt.Sprintf("\nFound %d matching listings.", len(b.Hits())))
}

func (p *Printer) hit(h result.Hit) {
	l := h.Listing()

	p.rule()
	p.line("")
	p.summary(l.ID(), l.Name(), l.Space(), l.Price(), l.Accommodates())
	p.field("Similarity Score", fmt.Sprintf("%g", h.Score()))
	p.amenities(l.Amenities())
}

// Listing prints one stored listing with its description and vector sizes.
func (p *Printer) Listing(l *domlisting.Listing) {
	p.line(p.styles.Title.Render("=== Listing ==="))
	p.summary(l.ID(), l.Name(), l.Space(), l.Price(), l.Accommodates())
	if l.Description() != "" {
		p.field("Description", l.Description())
	}

	tags, err := domlisting.ParseAmenities(l.Amenities())
	if err != nil {
		p.Warn("Warning: Error processing amenities for listing %s", l.ID())
	} else {
		p.amenities(tags)
	}

	p.line("")
	p.field("Text Embedding", fmt.Sprintf("%d dims (FLAT and HNSW identical)", len(l.TextEmbedding())))
	p.field("Image Embedding", fmt.Sprintf("%d dims", len(l.ImageEmbedding())))
}

func (p *Printer) summary(id, name, space string, price int64, accommodates int) {
	p.field("ID", id)
	p.field("Name", name)
	p.field("Space", space)
	p.field("Price", fmt.Sprintf("$%d", price))
	p.field("Accommodates", fmt.Sprintf("%d", accommodates))
}

func (p *Printer) amenities(tags []string) {
	p.line("")
	p.line(p.styles.Label.Render("Amenities:"))
	for _, row := range amenityRows(tags) {
		p.line("  " + row)
	}

	if domlisting.HasWifi(tags) {
		p.line("")
		p.line(p.styles.Good.Render("✓ WiFi is available"))
	}
}

// amenityRows groups tags three per line as "• a  |  • b  |  • c".
func amenityRows(tags []string) []string {
	var rows []string
	for i := 0; i < len(tags); i += amenitiesPerLine {
		end := min(i+amenitiesPerLine, len(tags))
		items := make([]string, 0, end-i)
		for _, t := range tags[i:end] {
			items = append(items, "• "+t)
		}
		rows = append(rows, strings.Join(items, "  |  "))
	}
	return rows
}

func (p *Printer) field(label, value string) {
	p.line(p.styles.Label.Render(label+":") + " " + value)
}

func (p *Printer) rule() {
	p.line("")
	p.line(p.styles.Rule.Render(strings.Repeat("=", separatorWidth)))
}

func (p *Printer) line(s string) {
	fmt.Fprintln(p.w, s)
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.4f seconds", d.Seconds())
}

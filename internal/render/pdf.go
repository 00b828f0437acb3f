package render

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"
	"golang.org/x/net/html"
)

// DejaVu Sans covers Latin, Greek and Cyrillic. Runes outside it are still
// written to the content stream and draw as the font's missing glyph.
var (
	//go:embed fonts/DejaVuSans.ttf
	regularTTF []byte
	//go:embed fonts/DejaVuSans-Bold.ttf
	boldTTF []byte
)

const (
	fontFamily = "DejaVu"
	bodySize   = 11.0
	h1Size     = 20.0
	h2Size     = 13.0
	margin     = 18.0
)

type pdfMeta struct {
	Title   string
	Author  string
	Created time.Time
}

// toPDF lays out the subset of HTML produced by the profile template: h1, h2,
// p, strong/b, a, ul/li and br. Other elements contribute their text only.
func toPDF(doc []byte, meta pdfMeta) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddUTF8FontFromBytes(fontFamily, "", regularTTF)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", boldTTF)
	pdf.SetCatalogSort(true)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetCreator("HR Candidate Review", true)
	pdf.SetAuthor(meta.Author, true)
	pdf.SetTitle(meta.Title, true)
	// Both dates are pinned so that one row always yields the same bytes.
	created := meta.Created
	if created.IsZero() {
		created = time.Unix(0, 0).UTC()
	}
	pdf.SetCreationDate(created)
	pdf.SetModificationDate(created)
	pdf.AddPage()

	w := &walker{pdf: pdf, size: bodySize}
	w.apply()
	if err := w.walk(bytes.NewReader(doc)); err != nil {
		return nil, err
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("layout pdf: %w", err)
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return out.Bytes(), nil
}

// walker carries the inline state while the token stream is drawn.
type walker struct {
	pdf   *fpdf.Fpdf
	size  float64
	bold  int
	href  string
	color [3]int

	// lineStart is true until text has been written on the current line.
	lineStart bool
	skip      int
}

func (w *walker) walk(r io.Reader) error {
	z := html.NewTokenizer(r)
	w.lineStart = true
	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return nil
			}
			return fmt.Errorf("parse html: %w", z.Err())
		case html.StartTagToken:
			w.open(z.Token())
		case html.SelfClosingTagToken:
			if tok := z.Token(); tok.Data == "br" {
				w.newline(lineHeight(w.size))
			}
		case html.EndTagToken:
			w.close(z.Token())
		case html.TextToken:
			if w.skip == 0 {
				w.text(z.Token().Data)
			}
		}
	}
}

func (w *walker) open(tok html.Token) {
	switch tok.Data {
	case "head", "script", "style":
		w.skip++
	case "h1":
		w.size = h1Size
		w.bold++
		w.color = [3]int{20, 20, 20}
	case "h2":
		w.newline(2)
		w.size = h2Size
		w.bold++
		w.color = [3]int{40, 70, 120}
	case "strong", "b":
		w.bold++
	case "a":
		for _, a := range tok.Attr {
			if a.Key == "href" {
				w.href = a.Val
			}
		}
	case "li":
		w.pdf.SetX(margin + 4)
		w.write("• ")
	case "br":
		w.newline(lineHeight(w.size))
	}
	w.apply()
}

func (w *walker) close(tok html.Token) {
	switch tok.Data {
	case "head", "script", "style":
		if w.skip > 0 {
			w.skip--
		}
	case "h1":
		w.newline(lineHeight(h1Size) + 2)
		w.reset()
	case "h2":
		w.newline(lineHeight(h2Size) + 1)
		w.reset()
	case "strong", "b":
		if w.bold > 0 {
			w.bold--
		}
	case "a":
		w.href = ""
	case "p", "li":
		w.newline(lineHeight(w.size) + 1)
	case "ul":
		w.newline(1)
	}
	w.apply()
}

func (w *walker) text(s string) {
	s = collapseSpace(bmpOnly(s))
	if w.lineStart {
		s = strings.TrimLeft(s, " ")
	}
	if s == "" {
		return
	}
	if w.href != "" {
		w.pdf.SetTextColor(30, 90, 200)
		w.pdf.WriteLinkString(lineHeight(w.size), s, w.href)
		w.pdf.SetTextColor(w.color[0], w.color[1], w.color[2])
		w.lineStart = false
		return
	}
	w.write(s)
}

func (w *walker) write(s string) {
	w.pdf.Write(lineHeight(w.size), s)
	w.lineStart = false
}

func (w *walker) newline(h float64) {
	if !w.lineStart {
		w.pdf.Ln(h)
	} else if h > 0 {
		w.pdf.Ln(h / 2)
	}
	w.lineStart = true
}

func (w *walker) reset() {
	w.size = bodySize
	w.bold = 0
	w.color = [3]int{0, 0, 0}
}

func (w *walker) apply() {
	style := ""
	if w.bold > 0 {
		style = "B"
	}
	if w.href != "" {
		style += "U"
	}
	w.pdf.SetFont(fontFamily, style, w.size)
	w.pdf.SetTextColor(w.color[0], w.color[1], w.color[2])
}

// bmpOnly replaces runes above U+FFFF, which the font width table cannot
// index, with U+FFFD.
func bmpOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r > 0xFFFF {
			return utf8.RuneError
		}
		return r
	}, s)
}

// lineHeight converts a font size in points to a line height in mm.
func lineHeight(size float64) float64 { return size * 0.5 }

func collapseSpace(s string) string {
	if s == "" {
		return s
	}
	lead := isSpace(s[0])
	trail := isSpace(s[len(s)-1])
	out := strings.Join(strings.Fields(s), " ")
	if out == "" {
		if lead {
			return " "
		}
		return ""
	}
	if lead {
		out = " " + out
	}
	if trail {
		out += " "
	}
	return out
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t' || b == '\r' || b == '\f'
}

// Package document renders the guidance confirmation form as a fixed-layout
// A4 PDF. The layout mirrors the official reference form: header code, title,
// the numbered confirmation clauses, session details with underlined fields,
// and a signature block anchored to the bottom of the page.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

// ErrImageEmbed reports that the signature image could not be placed on the
// page, usually because the file is not a decodable raster image.
var ErrImageEmbed = errors.New("embed signature image")

const (
	fontFamily = "NotoSansJP"

	headerY     = 10
	titleY      = 25
	titleGap    = 12
	clauseNumW  = 8
	clauseLineH = 5
	clauseGap   = 1
	bodyLineH   = 8

	underlineLength = 80
	underlineIndent = 70

	signatureBlockOffset = 35
	signatureLabelWidth  = 45
	signatureRuleLength  = 65
	signatureImageWidth  = 55
	signatureImageHeight = 15

	formCode         = "参考様式第５－９号"
	formTitle        = "事 前 ガ イ ダ ン ス の 確 認 書"
	sessionWindow    = "13時00分から16時00分まで"
	institutionLabel = "特定技能所属機関（又は登録支援機関）の氏名又は名称"
	institutionName  = "レバレジーズオフィスサポート株式会社"
	explainerLabel   = "説明者の氏名"
	clausesLeadIn    = "について、"
	acknowledgment   = "から説明を受け、内容を十分に理解しました。"
	signatureLabel   = "特定技能外国人の署名"
)

// Clause is one numbered confirmation item, e.g. "１" plus its body text.
type Clause struct {
	Num  string
	Text string
}

// Input carries everything a single render needs. Date drives both the
// displayed dates and the PDF metadata timestamps, so two renders with equal
// inputs produce identical bytes.
type Input struct {
	ExplainerName      string
	Date               time.Time
	SignatureImagePath string
	Clauses            []Clause
	FinalConfirmation  string
}

// Engine renders confirmation PDFs using a UTF-8 TTF font that covers
// Japanese.
type Engine struct {
	fontPath string
}

// NewEngine creates an Engine around the font at fontPath.
func NewEngine(fontPath string) (*Engine, error) {
	fontPath = strings.TrimSpace(fontPath)
	if fontPath == "" {
		return nil, fmt.Errorf("font path is required")
	}
	info, err := os.Stat(fontPath)
	if err != nil {
		return nil, fmt.Errorf("font file %s: %w", fontPath, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("font file %s is a directory", fontPath)
	}
	return &Engine{fontPath: fontPath}, nil
}

// Render lays out one confirmation page and returns the finished PDF bytes.
func (e *Engine) Render(in Input) ([]byte, error) {
	if e == nil {
		return nil, fmt.Errorf("layout engine is not configured")
	}
	if strings.TrimSpace(in.ExplainerName) == "" {
		return nil, fmt.Errorf("explainer name is required")
	}
	if strings.TrimSpace(in.SignatureImagePath) == "" {
		return nil, fmt.Errorf("signature image path is required")
	}
	if len(in.Clauses) == 0 {
		return nil, fmt.Errorf("at least one clause is required")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(in.Date)
	pdf.SetModificationDate(in.Date)
	pdf.AddPage()
	pdf.AddUTF8Font(fontFamily, "", e.fontPath)
	pdf.SetFont(fontFamily, "", 10)
	if pdf.Err() {
		return nil, fmt.Errorf("load font %s: %w", e.fontPath, pdf.Error())
	}

	pageW, pageH := pdf.GetPageSize()
	leftMargin, _, rightMargin, _ := pdf.GetMargins()

	pdf.SetXY(leftMargin, headerY)
	pdf.CellFormat(0, 10, formCode, "", 0, "L", false, 0, "")

	pdf.SetXY(0, titleY)
	pdf.SetFont(fontFamily, "", 16)
	pdf.CellFormat(0, 10, formTitle, "", 1, "C", false, 0, "")
	pdf.Ln(titleGap)

	pdf.SetFont(fontFamily, "", 10.5)
	clauseX := pdf.GetX()
	clauseTextW := pageW - leftMargin - rightMargin - clauseNumW
	for _, clause := range in.Clauses {
		pdf.SetX(clauseX)
		pdf.CellFormat(clauseNumW, clauseLineH, clause.Num, "", 0, "L", false, 0, "")
		pdf.MultiCell(clauseTextW, clauseLineH, clause.Text, "", "L", false)
		pdf.Ln(clauseGap)
	}

	pdf.SetFontSize(11)
	pdf.Ln(8)
	pdf.MultiCell(0, bodyLineH, clausesLeadIn, "", "L", false)
	pdf.Ln(1)

	dateStr := fmt.Sprintf("%d年%d月%d日", in.Date.Year(), int(in.Date.Month()), in.Date.Day())
	sessionLine := dateStr + "  " + sessionWindow
	sessionWidth := pdf.GetStringWidth(sessionLine)
	sessionX := (pageW - sessionWidth) / 2
	pdf.CellFormat(0, bodyLineH, sessionLine, "", 1, "C", false, 0, "")
	y := pdf.GetY()
	pdf.Line(sessionX, y-1, sessionX+sessionWidth, y-1)
	pdf.Ln(4)

	pdf.CellFormat(0, bodyLineH, institutionLabel, "", 1, "L", false, 0, "")
	pdf.Ln(1)
	e.underlinedField(pdf, leftMargin, institutionName)
	pdf.Ln(4)

	pdf.CellFormat(0, bodyLineH, explainerLabel, "", 1, "L", false, 0, "")
	pdf.Ln(1)
	e.underlinedField(pdf, leftMargin, in.ExplainerName)
	pdf.Ln(4)

	pdf.MultiCell(0, bodyLineH, acknowledgment, "", "L", false)
	pdf.Ln(2)
	if strings.TrimSpace(in.FinalConfirmation) != "" {
		pdf.MultiCell(0, bodyLineH, in.FinalConfirmation, "", "L", false)
	}

	sigY := pageH - signatureBlockOffset
	pdf.SetY(sigY)
	pdf.CellFormat(signatureLabelWidth, bodyLineH, signatureLabel, "", 0, "L", false, 0, "")
	ruleStartX := pdf.GetX()
	ruleEndX := ruleStartX + signatureRuleLength
	pdf.Line(ruleStartX, sigY+7, ruleEndX, sigY+7)

	pdf.ImageOptions(in.SignatureImagePath, ruleStartX+5, sigY-10,
		signatureImageWidth, signatureImageHeight, false,
		fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	if pdf.Err() {
		return nil, fmt.Errorf("%w: %v", ErrImageEmbed, pdf.Error())
	}

	pdf.SetXY(ruleEndX+5, sigY)
	pdf.CellFormat(0, bodyLineH, dateStr, "", 0, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// underlinedField writes value at the standard field indent and rules a line
// under the field's full width.
func (e *Engine) underlinedField(pdf *fpdf.Fpdf, leftMargin float64, value string) {
	pdf.SetX(leftMargin + underlineIndent)
	pdf.CellFormat(underlineLength, bodyLineH, value, "", 1, "L", false, 0, "")
	y := pdf.GetY()
	pdf.Line(leftMargin+underlineIndent, y-1, leftMargin+underlineIndent+underlineLength, y-1)
}

package pptx

import (
	"encoding/xml"

	"github.com/fredcamaral/pptgrid/internal/domain/entities"
)

const (
	nsA        = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsR        = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsP        = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsRels     = "http://schemas.openxmlformats.org/package/2006/relationships"
	tableURI   = "http://schemas.openxmlformats.org/drawingml/2006/table"
	monoFace   = "Courier New"
	bulletChar = "•"
)

// Element names carry their prefix literally; the root declares the prefixes.

type xSlide struct {
	XMLName   xml.Name   `xml:"p:sld"`
	XMLNSA    string     `xml:"xmlns:a,attr"`
	XMLNSR    string     `xml:"xmlns:r,attr"`
	XMLNSP    string     `xml:"xmlns:p,attr"`
	CSld      xCSld      `xml:"p:cSld"`
	ClrMapOvr xClrMapOvr `xml:"p:clrMapOvr"`
}

type xNotes struct {
	XMLName   xml.Name   `xml:"p:notes"`
	XMLNSA    string     `xml:"xmlns:a,attr"`
	XMLNSR    string     `xml:"xmlns:r,attr"`
	XMLNSP    string     `xml:"xmlns:p,attr"`
	CSld      xCSld      `xml:"p:cSld"`
	ClrMapOvr xClrMapOvr `xml:"p:clrMapOvr"`
}

type xClrMapOvr struct {
	Master struct{} `xml:"a:masterClrMapping"`
}

type xCSld struct {
	SpTree xSpTree `xml:"p:spTree"`
}

type xSpTree struct {
	NvGrpSpPr xNvGrpSpPr `xml:"p:nvGrpSpPr"`
	GrpSpPr   xGrpSpPr   `xml:"p:grpSpPr"`
	// Shapes holds *xSp and *xGraphicFrame values in z-order
	Shapes []interface{}
}

type xNvGrpSpPr struct {
	CNvPr      xCNvPr   `xml:"p:cNvPr"`
	CNvGrpSpPr struct{} `xml:"p:cNvGrpSpPr"`
	NvPr       struct{} `xml:"p:nvPr"`
}

type xGrpSpPr struct {
	Xfrm xGrpXfrm `xml:"a:xfrm"`
}

type xGrpXfrm struct {
	Off   xPoint `xml:"a:off"`
	Ext   xSize  `xml:"a:ext"`
	ChOff xPoint `xml:"a:chOff"`
	ChExt xSize  `xml:"a:chExt"`
}

type xCNvPr struct {
	ID   int    `xml:"id,attr"`
	Name string `xml:"name,attr"`
}

type xPoint struct {
	X int64 `xml:"x,attr"`
	Y int64 `xml:"y,attr"`
}

type xSize struct {
	Cx int64 `xml:"cx,attr"`
	Cy int64 `xml:"cy,attr"`
}

type xXfrm struct {
	Off xPoint `xml:"a:off"`
	Ext xSize  `xml:"a:ext"`
}

type xSp struct {
	XMLName xml.Name `xml:"p:sp"`
	NvSpPr  xNvSpPr  `xml:"p:nvSpPr"`
	SpPr    xSpPr    `xml:"p:spPr"`
	TxBody  *xTxBody `xml:"p:txBody"`
}

type xNvSpPr struct {
	CNvPr   xCNvPr   `xml:"p:cNvPr"`
	CNvSpPr xCNvSpPr `xml:"p:cNvSpPr"`
	NvPr    xNvPr    `xml:"p:nvPr"`
}

type xCNvSpPr struct {
	TxBox string `xml:"txBox,attr,omitempty"`
}

type xNvPr struct {
	Ph *xPh `xml:"p:ph"`
}

type xPh struct {
	Type string `xml:"type,attr,omitempty"`
	Idx  int    `xml:"idx,attr,omitempty"`
}

type xSpPr struct {
	Xfrm      *xXfrm      `xml:"a:xfrm"`
	PrstGeom  *xPrstGeom  `xml:"a:prstGeom"`
	SolidFill *xSolidFill `xml:"a:solidFill"`
	NoFill    *struct{}   `xml:"a:noFill"`
	Ln        *xLn        `xml:"a:ln"`
}

type xPrstGeom struct {
	Prst  string   `xml:"prst,attr"`
	AvLst struct{} `xml:"a:avLst"`
}

type xSolidFill struct {
	SrgbClr xSrgbClr `xml:"a:srgbClr"`
}

type xSrgbClr struct {
	Val string `xml:"val,attr"`
}

type xLn struct {
	W         int64       `xml:"w,attr,omitempty"`
	SolidFill *xSolidFill `xml:"a:solidFill"`
	NoFill    *struct{}   `xml:"a:noFill"`
}

type xTxBody struct {
	BodyPr     xBodyPr  `xml:"a:bodyPr"`
	LstStyle   struct{} `xml:"a:lstStyle"`
	Paragraphs []xP     `xml:"a:p"`
}

type xBodyPr struct {
	Wrap   string `xml:"wrap,attr,omitempty"`
	RtlCol string `xml:"rtlCol,attr,omitempty"`
	Anchor string `xml:"anchor,attr,omitempty"`
}

type xP struct {
	PPr        *xPPr `xml:"a:pPr"`
	Runs       []xR  `xml:"a:r"`
	EndParaRPr *xRPr `xml:"a:endParaRPr"`
}

type xPPr struct {
	MarL   int64     `xml:"marL,attr,omitempty"`
	Lvl    int       `xml:"lvl,attr,omitempty"`
	Indent int64     `xml:"indent,attr,omitempty"`
	Algn   string    `xml:"algn,attr,omitempty"`
	BuChar *xBuChar  `xml:"a:buChar"`
	BuNone *struct{} `xml:"a:buNone"`
}

type xBuChar struct {
	Char string `xml:"char,attr"`
}

type xR struct {
	RPr xRPr   `xml:"a:rPr"`
	T   string `xml:"a:t"`
}

type xRPr struct {
	Lang      string      `xml:"lang,attr,omitempty"`
	Sz        int         `xml:"sz,attr,omitempty"`
	B         string      `xml:"b,attr,omitempty"`
	I         string      `xml:"i,attr,omitempty"`
	Dirty     string      `xml:"dirty,attr,omitempty"`
	SolidFill *xSolidFill `xml:"a:solidFill"`
	Latin     *xFont      `xml:"a:latin"`
}

type xFont struct {
	Typeface string `xml:"typeface,attr"`
}

type xGraphicFrame struct {
	XMLName          xml.Name          `xml:"p:graphicFrame"`
	NvGraphicFramePr xNvGraphicFramePr `xml:"p:nvGraphicFramePr"`
	Xfrm             xXfrm             `xml:"p:xfrm"`
	Graphic          xGraphic          `xml:"a:graphic"`
}

type xNvGraphicFramePr struct {
	CNvPr             xCNvPr             `xml:"p:cNvPr"`
	CNvGraphicFramePr xCNvGraphicFramePr `xml:"p:cNvGraphicFramePr"`
	NvPr              struct{}           `xml:"p:nvPr"`
}

type xCNvGraphicFramePr struct {
	Locks xLocks `xml:"a:graphicFrameLocks"`
}

type xLocks struct {
	NoGrp string `xml:"noGrp,attr"`
}

type xGraphic struct {
	Data xGraphicData `xml:"a:graphicData"`
}

type xGraphicData struct {
	URI string `xml:"uri,attr"`
	Tbl xTbl   `xml:"a:tbl"`
}

type xTbl struct {
	TblPr xTblPr   `xml:"a:tblPr"`
	Grid  xTblGrid `xml:"a:tblGrid"`
	Rows  []xTr    `xml:"a:tr"`
}

type xTblPr struct {
	FirstRow string `xml:"firstRow,attr,omitempty"`
	BandRow  string `xml:"bandRow,attr,omitempty"`
}

type xTblGrid struct {
	Cols []xGridCol `xml:"a:gridCol"`
}

type xGridCol struct {
	W int64 `xml:"w,attr"`
}

type xTr struct {
	H     int64 `xml:"h,attr"`
	Cells []xTc `xml:"a:tc"`
}

type xTc struct {
	TxBody xTxBody `xml:"a:txBody"`
	TcPr   xTcPr   `xml:"a:tcPr"`
}

type xTcPr struct {
	Anchor    string      `xml:"anchor,attr,omitempty"`
	SolidFill *xSolidFill `xml:"a:solidFill"`
}

var alignments = map[entities.Alignment]string{
	entities.AlignLeft:    "l",
	entities.AlignCenter:  "ctr",
	entities.AlignRight:   "r",
	entities.AlignJustify: "just",
}

var anchors = map[entities.VerticalAnchor]string{
	entities.AnchorTop:    "t",
	entities.AnchorMiddle: "ctr",
	entities.AnchorBottom: "b",
}

func newSlideXML(slide *entities.Slide) *xSlide {
	doc := &xSlide{XMLNSA: nsA, XMLNSR: nsR, XMLNSP: nsP}
	doc.CSld.SpTree = newSpTree()
	for _, shape := range slide.Shapes {
		doc.CSld.SpTree.Shapes = append(doc.CSld.SpTree.Shapes, shapeXML(shape))
	}
	return doc
}

func newNotesXML(notes string) *xNotes {
	doc := &xNotes{XMLNSA: nsA, XMLNSR: nsR, XMLNSP: nsP}
	doc.CSld.SpTree = newSpTree()

	image := &xSp{}
	image.NvSpPr.CNvPr = xCNvPr{ID: 2, Name: "Slide Image Placeholder 1"}
	image.NvSpPr.NvPr.Ph = &xPh{Type: "sldImg"}

	frame := entities.NewTextFrame()
	frame.SetText(notes)
	body := &xSp{TxBody: textBodyXML(frame)}
	body.NvSpPr.CNvPr = xCNvPr{ID: 3, Name: "Notes Placeholder 2"}
	body.NvSpPr.NvPr.Ph = &xPh{Type: "body", Idx: 1}

	doc.CSld.SpTree.Shapes = []interface{}{image, body}
	return doc
}

func newSpTree() xSpTree {
	return xSpTree{NvGrpSpPr: xNvGrpSpPr{CNvPr: xCNvPr{ID: 1}}}
}

func shapeXML(shape *entities.Shape) interface{} {
	if shape.Kind == entities.ShapeTable && shape.Table != nil {
		return tableXML(shape)
	}

	sp := &xSp{}
	sp.NvSpPr.CNvPr = xCNvPr{ID: shape.ID, Name: shape.Name}
	if shape.Kind == entities.ShapeTextbox {
		sp.NvSpPr.CNvSpPr.TxBox = "1"
	}
	sp.SpPr = xSpPr{
		Xfrm:     xfrm(shape.Rect),
		PrstGeom: &xPrstGeom{Prst: "rect"},
	}
	if shape.Fill.IsSolid() {
		sp.SpPr.SolidFill = solidFill(shape.Fill.ForeColor)
	} else {
		sp.SpPr.NoFill = &struct{}{}
	}
	if shape.Line.Visible() {
		sp.SpPr.Ln = &xLn{W: int64(shape.Line.EffectiveWidth()), SolidFill: solidFill(*shape.Line.Color)}
	} else if shape.Kind == entities.ShapeRectangle {
		sp.SpPr.Ln = &xLn{NoFill: &struct{}{}}
	}
	if shape.TextFrame != nil {
		sp.TxBody = textBodyXML(shape.TextFrame)
	}
	return sp
}

func tableXML(shape *entities.Shape) *xGraphicFrame {
	t := shape.Table
	gf := &xGraphicFrame{Xfrm: *xfrm(shape.Rect)}
	gf.NvGraphicFramePr.CNvPr = xCNvPr{ID: shape.ID, Name: shape.Name}
	gf.NvGraphicFramePr.CNvGraphicFramePr.Locks.NoGrp = "1"
	gf.Graphic.Data.URI = tableURI

	tbl := &gf.Graphic.Data.Tbl
	tbl.TblPr = xTblPr{FirstRow: "1", BandRow: "1"}
	for _, w := range splitEven(int64(shape.Rect.Width), t.Cols) {
		tbl.Grid.Cols = append(tbl.Grid.Cols, xGridCol{W: w})
	}
	heights := splitEven(int64(shape.Rect.Height), t.Rows)
	for r, row := range t.Cells {
		tr := xTr{H: heights[r]}
		for _, cell := range row {
			tc := xTc{TxBody: *textBodyXML(cell.TextFrame)}
			tc.TxBody.BodyPr = xBodyPr{}
			tc.TcPr.Anchor = anchors[cell.VerticalAnchor]
			if cell.Fill.IsSolid() {
				tc.TcPr.SolidFill = solidFill(cell.Fill.ForeColor)
			}
			tr.Cells = append(tr.Cells, tc)
		}
		tbl.Rows = append(tbl.Rows, tr)
	}
	return gf
}

// splitEven divides total into n parts, giving the remainder to the last one
func splitEven(total int64, n int) []int64 {
	parts := make([]int64, n)
	if n == 0 {
		return parts
	}
	each := total / int64(n)
	for i := range parts {
		parts[i] = each
	}
	parts[n-1] += total - each*int64(n)
	return parts
}

func textBodyXML(tf *entities.TextFrame) *xTxBody {
	body := &xTxBody{BodyPr: xBodyPr{Wrap: "square", RtlCol: "0"}}
	if tf == nil {
		body.Paragraphs = []xP{{EndParaRPr: &xRPr{Lang: "en-US", Dirty: "0"}}}
		return body
	}
	if !tf.WordWrap {
		body.BodyPr.Wrap = "none"
	}
	body.BodyPr.Anchor = anchors[tf.VerticalAnchor]

	for _, p := range tf.Paragraphs {
		body.Paragraphs = append(body.Paragraphs, paragraphXML(p))
	}
	if len(body.Paragraphs) == 0 {
		body.Paragraphs = []xP{{EndParaRPr: &xRPr{Lang: "en-US", Dirty: "0"}}}
	}
	return body
}

func paragraphXML(p entities.Paragraph) xP {
	var out xP
	ppr := &xPPr{Algn: alignments[p.Alignment], Lvl: p.Level}
	if p.Bullet {
		indent := int64(entities.Inches(0.25))
		ppr.MarL = indent * int64(p.Level+1)
		ppr.Indent = -indent
		ppr.BuChar = &xBuChar{Char: bulletChar}
	}
	if *ppr != (xPPr{}) {
		out.PPr = ppr
	}

	var last entities.Font
	for _, run := range p.Runs {
		last = run.Font
		if run.Text == "" {
			continue
		}
		out.Runs = append(out.Runs, xR{RPr: runProps(run.Font), T: run.Text})
	}
	if len(out.Runs) == 0 {
		rpr := runProps(last)
		out.EndParaRPr = &rpr
	}
	return out
}

func runProps(f entities.Font) xRPr {
	rpr := xRPr{Lang: "en-US", Dirty: "0"}
	if f.Size > 0 {
		rpr.Sz = int(f.Size.Points()*100 + 0.5)
	}
	if f.Bold {
		rpr.B = "1"
	}
	if f.Italic {
		rpr.I = "1"
	}
	if f.Color != nil {
		rpr.SolidFill = solidFill(*f.Color)
	}
	if f.Mono {
		rpr.Latin = &xFont{Typeface: monoFace}
	}
	return rpr
}

func xfrm(r entities.Rect) *xXfrm {
	return &xXfrm{
		Off: xPoint{X: int64(r.X), Y: int64(r.Y)},
		Ext: xSize{Cx: int64(r.Width), Cy: int64(r.Height)},
	}
}

func solidFill(c entities.RGBColor) *xSolidFill {
	return &xSolidFill{SrgbClr: xSrgbClr{Val: c.Hex()}}
}

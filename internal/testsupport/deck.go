package testsupport

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"path/filepath"
	"strings"
	"testing"
)

// DeckSlide describes one slide of a synthetic presentation.
type DeckSlide struct {
	// Notes becomes the notes body text; lines map to paragraphs. Empty
	// means the slide has no notes slide at all.
	Notes string
	Media *DeckMedia
}

// DeckMedia describes an embedded narration payload.
type DeckMedia struct {
	Extension   string
	ContentType string
	Payload     []byte
}

// FirstSlideID is the id assigned to the first slide; later slides count up.
const FirstSlideID = 256

// MediaPartName returns the part name BuildDeck uses for slide n (1-based).
func MediaPartName(n int, ext string) string {
	return fmt.Sprintf("/ppt/media/media%d.%s", n, ext)
}

// BuildDeck produces a minimal OPC presentation package.
func BuildDeck(t testing.TB, slides ...DeckSlide) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	write := func(name, body string) {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	write("[Content_Types].xml", contentTypesXML(slides))
	write("_rels/.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="ppt/presentation.xml"/></Relationships>`)
	write("ppt/presentation.xml", presentationXML(len(slides)))
	write("ppt/_rels/presentation.xml.rels", presentationRelsXML(len(slides)))

	for i, slide := range slides {
		n := i + 1
		write(fmt.Sprintf("ppt/slides/slide%d.xml", n), `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"><p:cSld><p:spTree/></p:cSld></p:sld>`)
		write(fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n), slideRelsXML(n, slide))
		if slide.Notes != "" {
			write(fmt.Sprintf("ppt/notesSlides/notesSlide%d.xml", n), notesXML(slide.Notes))
		}
		if slide.Media != nil {
			w, err := zw.CreateHeader(&zip.FileHeader{Name: strings.TrimPrefix(MediaPartName(n, slide.Media.Extension), "/"), Method: zip.Store})
			if err != nil {
				t.Fatalf("create media: %v", err)
			}
			if _, err := w.Write(slide.Media.Payload); err != nil {
				t.Fatalf("write media: %v", err)
			}
		}
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("close deck: %v", err)
	}
	return buf.Bytes()
}

// WriteDeck builds a deck and writes it to dir/name, returning the path.
func WriteDeck(t testing.TB, dir, name string, slides ...DeckSlide) string {
	t.Helper()
	path := filepath.Join(dir, name)
	WriteBytes(t, path, BuildDeck(t, slides...))
	return path
}

func contentTypesXML(slides []DeckSlide) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	b.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	seen := map[string]bool{}
	for _, slide := range slides {
		if slide.Media == nil || seen[slide.Media.Extension] {
			continue
		}
		seen[slide.Media.Extension] = true
		fmt.Fprintf(&b, `<Default Extension="%s" ContentType="%s"/>`, slide.Media.Extension, slide.Media.ContentType)
	}
	b.WriteString(`<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>`)
	for i, slide := range slides {
		fmt.Fprintf(&b, `<Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`, i+1)
		if slide.Notes != "" {
			fmt.Fprintf(&b, `<Override PartName="/ppt/notesSlides/notesSlide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.notesSlide+xml"/>`, i+1)
		}
	}
	b.WriteString(`</Types>`)
	return b.String()
}

func presentationXML(count int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:presentation xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"><p:sldIdLst>`)
	for i := 0; i < count; i++ {
		fmt.Fprintf(&b, `<p:sldId id="%d" r:id="rId%d"/>`, FirstSlideID+i, i+1)
	}
	b.WriteString(`</p:sldIdLst><p:sldSz cx="9144000" cy="6858000"/></p:presentation>`)
	return b.String()
}

func presentationRelsXML(count int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	for i := 0; i < count; i++ {
		fmt.Fprintf(&b, `<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide%d.xml"/>`, i+1, i+1)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

func slideRelsXML(n int, slide DeckSlide) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	if slide.Notes != "" {
		fmt.Fprintf(&b, `<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesSlide" Target="../notesSlides/notesSlide%d.xml"/>`, n)
	}
	if slide.Media != nil {
		target := "../media/" + filepath.Base(MediaPartName(n, slide.Media.Extension))
		fmt.Fprintf(&b, `<Relationship Id="rId2" Type="http://schemas.microsoft.com/office/2007/relationships/media" Target="%s"/>`, target)
		fmt.Fprintf(&b, `<Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/audio" Target="%s"/>`, target)
	}
	b.WriteString(`<Relationship Id="rId9" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink" Target="https://example.com/" TargetMode="External"/>`)
	b.WriteString(`</Relationships>`)
	return b.String()
}

func notesXML(notes string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:notes xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"><p:cSld><p:spTree>`)
	b.WriteString(`<p:sp><p:nvSpPr><p:cNvPr id="2" name="Slide Image Placeholder 1"/><p:cNvSpPr/><p:nvPr><p:ph type="sldImg"/></p:nvPr></p:nvSpPr><p:spPr/></p:sp>`)
	b.WriteString(`<p:sp><p:nvSpPr><p:cNvPr id="3" name="Notes Placeholder 2"/><p:cNvSpPr/><p:nvPr><p:ph type="body" idx="1"/></p:nvPr></p:nvSpPr><p:spPr/><p:txBody><a:bodyPr/><a:lstStyle/>`)
	for _, line := range strings.Split(notes, "\n") {
		fmt.Fprintf(&b, `<a:p><a:r><a:rPr lang="en-US"/><a:t>%s</a:t></a:r></a:p>`, html.EscapeString(line))
	}
	b.WriteString(`</p:txBody></p:sp>`)
	b.WriteString(`<p:sp><p:nvSpPr><p:cNvPr id="4" name="Slide Number Placeholder 3"/><p:cNvSpPr/><p:nvPr><p:ph type="sldNum" idx="5"/></p:nvPr></p:nvSpPr><p:spPr/><p:txBody><a:bodyPr/><a:p><a:r><a:t>7</a:t></a:r></a:p></p:txBody></p:sp>`)
	b.WriteString(`</p:spTree></p:cSld></p:notes>`)
	return b.String()
}

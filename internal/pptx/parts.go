package pptx

import (
	"encoding/xml"
	"path"
	"strings"
)

const (
	relationshipsNS = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

	RelTypeOfficeDocument = relationshipsNS + "/officeDocument"
	RelTypeSlide          = relationshipsNS + "/slide"
	RelTypeNotesSlide     = relationshipsNS + "/notesSlide"
	RelTypeAudio          = relationshipsNS + "/audio"
	RelTypeMedia          = "http://schemas.microsoft.com/office/2007/relationships/media"

	contentTypesPart = "[Content_Types].xml"
	packageRelsPart  = "_rels/.rels"
	defaultMainPart  = "ppt/presentation.xml"
)

// Relationship is one entry of a relationships part.
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

// External reports whether the relationship points outside the package.
func (r Relationship) External() bool {
	return strings.EqualFold(r.TargetMode, "External")
}

type relationshipsXML struct {
	Items []Relationship `xml:"Relationship"`
}

type contentTypesXML struct {
	Defaults []struct {
		Extension   string `xml:"Extension,attr"`
		ContentType string `xml:"ContentType,attr"`
	} `xml:"Default"`
	Overrides []struct {
		PartName    string `xml:"PartName,attr"`
		ContentType string `xml:"ContentType,attr"`
	} `xml:"Override"`
}

type contentTypes struct {
	defaults  map[string]string
	overrides map[string]string
}

func parseContentTypes(data []byte) (contentTypes, error) {
	var doc contentTypesXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return contentTypes{}, err
	}
	ct := contentTypes{defaults: map[string]string{}, overrides: map[string]string{}}
	for _, d := range doc.Defaults {
		ct.defaults[strings.ToLower(d.Extension)] = d.ContentType
	}
	for _, o := range doc.Overrides {
		ct.overrides[strings.ToLower(memberName(o.PartName))] = o.ContentType
	}
	return ct, nil
}

func (c contentTypes) lookup(member string) string {
	if ct, ok := c.overrides[strings.ToLower(member)]; ok {
		return ct
	}
	ext := strings.TrimPrefix(path.Ext(member), ".")
	return c.defaults[strings.ToLower(ext)]
}

// sldIdLst entries carry both an unqualified id and an r:id, so attributes
// are read by namespace rather than by struct tag.
type presentationXML struct {
	SlideList *struct {
		Slides []struct {
			Attrs []xml.Attr `xml:",any,attr"`
		} `xml:"sldId"`
	} `xml:"sldIdLst"`
}

type notesXML struct {
	Shapes []notesShape `xml:"cSld>spTree>sp"`
}

type notesShape struct {
	Placeholder *struct {
		Type string `xml:"type,attr"`
	} `xml:"nvSpPr>nvPr>ph"`
	Paragraphs []paragraph `xml:"txBody>p"`
}

// paragraph collects every text run below a:p in document order, including
// field runs.
type paragraph struct {
	Text string
}

func (p *paragraph) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var b strings.Builder
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "t":
				var text string
				if err := d.DecodeElement(&text, &el); err != nil {
					return err
				}
				b.WriteString(text)
			case "br":
				b.WriteString("\n")
			}
		case xml.EndElement:
			if el.Name.Local == start.Name.Local {
				p.Text = b.String()
				return nil
			}
		}
	}
}

// memberName converts an OPC part name ("/ppt/slides/slide1.xml") into a zip
// member name ("ppt/slides/slide1.xml").
func memberName(partName string) string {
	return strings.TrimPrefix(path.Clean("/"+partName), "/")
}

// PartName converts a zip member name into its absolute OPC part name.
func PartName(member string) string {
	return "/" + memberName(member)
}

func relsMemberFor(member string) string {
	dir, file := path.Split(member)
	return dir + "_rels/" + file + ".rels"
}

func resolveTarget(sourceMember, target string) string {
	if strings.HasPrefix(target, "/") {
		return memberName(target)
	}
	return memberName(path.Join(path.Dir(sourceMember), target))
}

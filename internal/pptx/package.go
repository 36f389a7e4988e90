package pptx

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gofrs/flock"

	"slidevox/internal/services"
)

// SlideEntry is one p:sldId element in presentation order.
type SlideEntry struct {
	ID    uint32
	RelID string
}

// MediaRef is a media payload attached to a slide.
type MediaRef struct {
	PartName    string
	ContentType string
	RelID       string
	RelType     string
}

// Package is an opened presentation package.
type Package struct {
	path     string
	writable bool
	lock     *flock.Flock

	reader  *zip.ReadCloser
	members map[string]*zip.File
	types   contentTypes
	main    string
	mainRel map[string]Relationship

	pending map[string][]byte
	closed  bool
}

// Open reads the package at path. A writable package takes an exclusive
// advisory lock that is held until Close.
func Open(path string, writable bool) (*Package, error) {
	pkg := &Package{path: path, writable: writable, pending: map[string][]byte{}}
	if writable {
		lock := flock.New(path + ".lock")
		ok, err := lock.TryLock()
		if err != nil {
			return nil, services.Wrap(services.ErrStorage, path, "lock package", "Failed to acquire package lock", err)
		}
		if !ok {
			return nil, services.Wrap(services.ErrPackageBusy, path, "lock package", "Package is open for writing elsewhere", nil)
		}
		pkg.lock = lock
	}
	if err := pkg.load(); err != nil {
		pkg.release()
		return nil, err
	}
	return pkg, nil
}

func (p *Package) load() error {
	reader, err := zip.OpenReader(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return services.Wrap(services.ErrStorage, p.path, "open package", "Package file not found", err)
		}
		return services.Wrap(services.ErrMalformedPackage, p.path, "open package", "Not a readable zip archive", err)
	}
	p.reader = reader
	p.members = make(map[string]*zip.File, len(reader.File))
	for _, f := range reader.File {
		p.members[strings.ToLower(memberName(f.Name))] = f
	}

	data, err := p.readMember(contentTypesPart)
	if err != nil {
		return services.Wrap(services.ErrMalformedPackage, p.path, "read content types", "Missing [Content_Types].xml", err)
	}
	if p.types, err = parseContentTypes(data); err != nil {
		return services.Wrap(services.ErrMalformedPackage, p.path, "parse content types", "Invalid [Content_Types].xml", err)
	}

	p.main = defaultMainPart
	if rels, err := p.relationships(packageRelsPart); err == nil {
		for _, rel := range rels {
			if rel.Type == RelTypeOfficeDocument && !rel.External() {
				p.main = resolveTarget("", rel.Target)
				break
			}
		}
	}
	if _, ok := p.members[strings.ToLower(p.main)]; !ok {
		return services.Wrap(services.ErrMalformedPackage, p.path, "locate presentation", "Presentation part "+p.main+" not found", nil)
	}

	rels, err := p.relationships(relsMemberFor(p.main))
	if err != nil {
		return services.Wrap(services.ErrMalformedPackage, p.path, "read presentation relationships", "Invalid presentation relationships", err)
	}
	p.mainRel = make(map[string]Relationship, len(rels))
	for _, rel := range rels {
		p.mainRel[rel.ID] = rel
	}
	return nil
}

// Path returns the file path the package was opened from.
func (p *Package) Path() string { return p.path }

// Slides returns the sldIdLst entries in document order.
func (p *Package) Slides() ([]SlideEntry, error) {
	data, err := p.readMember(p.main)
	if err != nil {
		return nil, services.Wrap(services.ErrMalformedPackage, p.path, "read presentation", "Presentation part unreadable", err)
	}
	var doc presentationXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, services.Wrap(services.ErrMalformedPackage, p.path, "parse presentation", "Invalid presentation XML", err)
	}
	if doc.SlideList == nil {
		return nil, services.Wrap(services.ErrMalformedPackage, p.path, "parse presentation", "Presentation has no slide id list", nil)
	}
	entries := make([]SlideEntry, 0, len(doc.SlideList.Slides))
	for _, el := range doc.SlideList.Slides {
		var entry SlideEntry
		for _, attr := range el.Attrs {
			switch {
			case attr.Name.Local == "id" && attr.Name.Space == "":
				id, err := strconv.ParseUint(strings.TrimSpace(attr.Value), 10, 32)
				if err != nil {
					return nil, services.Wrap(services.ErrMalformedPackage, p.path, "parse presentation", "Invalid slide id "+attr.Value, err)
				}
				entry.ID = uint32(id)
			case attr.Name.Local == "id" && attr.Name.Space == relationshipsNS:
				entry.RelID = attr.Value
			}
		}
		if entry.RelID == "" {
			return nil, services.Wrap(services.ErrMalformedPackage, p.path, "parse presentation", fmt.Sprintf("Slide %d has no relationship id", entry.ID), nil)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ResolveSlide maps a presentation relationship id to the slide part name.
func (p *Package) ResolveSlide(relID string) (string, error) {
	rel, ok := p.mainRel[relID]
	if !ok || rel.External() {
		return "", services.Wrap(services.ErrMalformedPackage, p.path, "resolve slide", "Unknown slide relationship "+relID, nil)
	}
	member := resolveTarget(p.main, rel.Target)
	if _, ok := p.members[strings.ToLower(member)]; !ok {
		return "", services.Wrap(services.ErrMalformedPackage, p.path, "resolve slide", "Slide part "+member+" not found", nil)
	}
	return PartName(member), nil
}

// NotesText returns the body placeholder text of the slide's notes slide,
// one line per paragraph. A slide without notes returns "".
func (p *Package) NotesText(slidePart string) (string, error) {
	member := memberName(slidePart)
	rels, err := p.relationships(relsMemberFor(member))
	if err != nil {
		return "", services.Wrap(services.ErrMalformedPackage, p.path, "read slide relationships", "Invalid relationships for "+slidePart, err)
	}
	for _, rel := range rels {
		if rel.Type != RelTypeNotesSlide || rel.External() {
			continue
		}
		data, err := p.readMember(resolveTarget(member, rel.Target))
		if err != nil {
			return "", services.Wrap(services.ErrMalformedPackage, p.path, "read notes", "Notes part unreadable for "+slidePart, err)
		}
		var doc notesXML
		if err := xml.Unmarshal(data, &doc); err != nil {
			return "", services.Wrap(services.ErrMalformedPackage, p.path, "parse notes", "Invalid notes XML for "+slidePart, err)
		}
		for _, shape := range doc.Shapes {
			if shape.Placeholder == nil || shape.Placeholder.Type != "body" {
				continue
			}
			lines := make([]string, 0, len(shape.Paragraphs))
			for _, para := range shape.Paragraphs {
				lines = append(lines, para.Text)
			}
			return strings.Join(lines, "\n"), nil
		}
		return "", nil
	}
	return "", nil
}

// MediaRefs lists the internal media parts a slide references through audio
// or media relationships, in relationship order and without duplicates.
func (p *Package) MediaRefs(slidePart string) ([]MediaRef, error) {
	member := memberName(slidePart)
	rels, err := p.relationships(relsMemberFor(member))
	if err != nil {
		return nil, services.Wrap(services.ErrMalformedPackage, p.path, "read slide relationships", "Invalid relationships for "+slidePart, err)
	}
	seen := map[string]struct{}{}
	var refs []MediaRef
	for _, rel := range rels {
		if rel.External() || (rel.Type != RelTypeAudio && rel.Type != RelTypeMedia) {
			continue
		}
		target := resolveTarget(member, rel.Target)
		if _, ok := p.members[strings.ToLower(target)]; !ok {
			continue
		}
		key := strings.ToLower(target)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		refs = append(refs, MediaRef{
			PartName:    PartName(target),
			ContentType: p.types.lookup(target),
			RelID:       rel.ID,
			RelType:     rel.Type,
		})
	}
	return refs, nil
}

// ContentType returns the declared content type of a part.
func (p *Package) ContentType(partName string) string {
	return p.types.lookup(memberName(partName))
}

// ReadPayload returns the current bytes of a part, including uncommitted
// rewrites.
func (p *Package) ReadPayload(partName string) ([]byte, error) {
	member := memberName(partName)
	if data, ok := p.pending[strings.ToLower(member)]; ok {
		return append([]byte(nil), data...), nil
	}
	data, err := p.readMember(member)
	if err != nil {
		return nil, services.Wrap(services.ErrMalformedPackage, p.path, "read payload", "Part "+partName+" unreadable", err)
	}
	return data, nil
}

// Close releases the archive and the writer lock. Uncommitted rewrites are
// discarded.
func (p *Package) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	var err error
	if p.reader != nil {
		err = p.reader.Close()
		p.reader = nil
	}
	p.pending = nil
	p.release()
	return err
}

func (p *Package) release() {
	if p.lock == nil {
		return
	}
	_ = p.lock.Unlock()
	_ = os.Remove(p.lock.Path())
	p.lock = nil
}

func (p *Package) relationships(relsMember string) ([]Relationship, error) {
	f, ok := p.members[strings.ToLower(relsMember)]
	if !ok {
		return nil, nil
	}
	data, err := readZipFile(f)
	if err != nil {
		return nil, err
	}
	var doc relationshipsXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.Items, nil
}

func (p *Package) readMember(member string) ([]byte, error) {
	if p.reader == nil {
		return nil, errors.New("package closed")
	}
	f, ok := p.members[strings.ToLower(member)]
	if !ok {
		return nil, fmt.Errorf("member %s: %w", member, os.ErrNotExist)
	}
	return readZipFile(f)
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

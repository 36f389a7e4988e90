package pptx_test

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"slidevox/internal/pptx"
	"slidevox/internal/services"
	"slidevox/internal/testsupport"
)

func sampleDeck(t *testing.T) string {
	t.Helper()
	return testsupport.WriteDeck(t, t.TempDir(), "deck.pptx",
		testsupport.DeckSlide{Notes: "Welcome\nto the course", Media: &testsupport.DeckMedia{Extension: "m4a", ContentType: "audio/mp4", Payload: []byte("original-m4a")}},
		testsupport.DeckSlide{},
		testsupport.DeckSlide{Notes: "Third", Media: &testsupport.DeckMedia{Extension: "wav", ContentType: "audio/wav", Payload: []byte("original-wav")}},
	)
}

func TestSlidesInDocumentOrder(t *testing.T) {
	pkg, err := pptx.Open(sampleDeck(t), false)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer pkg.Close()

	slides, err := pkg.Slides()
	if err != nil {
		t.Fatalf("Slides: %v", err)
	}
	if len(slides) != 3 {
		t.Fatalf("expected 3 slides, got %d", len(slides))
	}
	for i, slide := range slides {
		if slide.ID != uint32(testsupport.FirstSlideID+i) {
			t.Fatalf("slide %d id = %d", i, slide.ID)
		}
	}
	part, err := pkg.ResolveSlide(slides[2].RelID)
	if err != nil {
		t.Fatalf("ResolveSlide: %v", err)
	}
	if part != "/ppt/slides/slide3.xml" {
		t.Fatalf("unexpected slide part %q", part)
	}
}

func TestNotesTextUsesBodyPlaceholder(t *testing.T) {
	pkg, err := pptx.Open(sampleDeck(t), false)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer pkg.Close()

	text, err := pkg.NotesText("/ppt/slides/slide1.xml")
	if err != nil {
		t.Fatalf("NotesText: %v", err)
	}
	if text != "Welcome\nto the course" {
		t.Fatalf("unexpected notes %q", text)
	}
	empty, err := pkg.NotesText("/ppt/slides/slide2.xml")
	if err != nil {
		t.Fatalf("NotesText: %v", err)
	}
	if empty != "" {
		t.Fatalf("expected empty notes, got %q", empty)
	}
}

func TestMediaRefsDeduplicateAndSkipExternal(t *testing.T) {
	pkg, err := pptx.Open(sampleDeck(t), false)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer pkg.Close()

	refs, err := pkg.MediaRefs("/ppt/slides/slide1.xml")
	if err != nil {
		t.Fatalf("MediaRefs: %v", err)
	}
	if len(refs) != 1 {
		t.Fatalf("expected 1 media ref, got %+v", refs)
	}
	if refs[0].PartName != "/ppt/media/media1.m4a" || refs[0].ContentType != "audio/mp4" {
		t.Fatalf("unexpected ref %+v", refs[0])
	}
	none, err := pkg.MediaRefs("/ppt/slides/slide2.xml")
	if err != nil {
		t.Fatalf("MediaRefs: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no media, got %+v", none)
	}
}

func TestMissingSlideListIsMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.pptx")
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range map[string]string{
		"[Content_Types].xml":             `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`,
		"ppt/presentation.xml":            `<p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"/>`,
		"ppt/_rels/presentation.xml.rels": `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"/>`,
	} {
		w, _ := zw.Create(name)
		_, _ = w.Write([]byte(body))
	}
	_ = zw.Close()
	testsupport.WriteBytes(t, path, buf.Bytes())

	pkg, err := pptx.Open(path, false)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer pkg.Close()
	if _, err := pkg.Slides(); !errors.Is(err, services.ErrMalformedPackage) {
		t.Fatalf("expected ErrMalformedPackage, got %v", err)
	}
}

func TestOpenRejectsNonZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.pptx")
	testsupport.WriteBytes(t, path, []byte("not a zip"))
	if _, err := pptx.Open(path, false); !errors.Is(err, services.ErrMalformedPackage) {
		t.Fatalf("expected ErrMalformedPackage, got %v", err)
	}
}

func TestOpenMissingFileIsStorageFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.pptx")
	_, err := pptx.Open(path, false)
	if !errors.Is(err, services.ErrStorage) || errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
}

func TestWritableOpenIsExclusive(t *testing.T) {
	path := sampleDeck(t)
	first, err := pptx.Open(path, true)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := pptx.Open(path, true); !errors.Is(err, services.ErrPackageBusy) {
		t.Fatalf("expected ErrPackageBusy, got %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	second, err := pptx.Open(path, true)
	if err != nil {
		t.Fatalf("reopen after close: %v", err)
	}
	_ = second.Close()
}

func TestCommitRewritesOnlyTargetPayload(t *testing.T) {
	path := sampleDeck(t)
	before := readMembers(t, path)

	pkg, err := pptx.Open(path, true)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	w, err := pkg.OpenPayloadWriter("/ppt/media/media1.m4a")
	if err != nil {
		t.Fatalf("OpenPayloadWriter: %v", err)
	}
	if _, err := w.Write([]byte("replacement")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close writer: %v", err)
	}
	if got, _ := pkg.ReadPayload("/ppt/media/media1.m4a"); string(got) != "replacement" {
		t.Fatalf("pending payload not visible: %q", got)
	}
	if err := pkg.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if got, _ := pkg.ReadPayload("/ppt/media/media1.m4a"); string(got) != "replacement" {
		t.Fatalf("committed payload not visible: %q", got)
	}
	if err := pkg.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	after := readMembers(t, path)
	if len(after) != len(before) {
		t.Fatalf("member count changed: %d -> %d", len(before), len(after))
	}
	for name, data := range before {
		if name == "ppt/media/media1.m4a" {
			if string(after[name]) != "replacement" {
				t.Fatalf("payload = %q", after[name])
			}
			continue
		}
		if !bytes.Equal(after[name], data) {
			t.Fatalf("member %s changed", name)
		}
	}
	if _, err := os.Stat(path + ".lock"); !os.IsNotExist(err) {
		t.Fatalf("expected lock file removed, stat err=%v", err)
	}
}

func TestCommitWithoutChangesLeavesFile(t *testing.T) {
	path := sampleDeck(t)
	original, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	pkg, err := pptx.Open(path, true)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := pkg.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	_ = pkg.Close()
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(original, after) {
		t.Fatal("expected byte-identical file")
	}
}

func TestPayloadWriterGuards(t *testing.T) {
	path := sampleDeck(t)
	ro, err := pptx.Open(path, false)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := ro.OpenPayloadWriter("/ppt/media/media1.m4a"); err == nil {
		t.Fatal("expected read-only package to refuse writer")
	}
	_ = ro.Close()

	rw, err := pptx.Open(path, true)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rw.Close()
	if _, err := rw.OpenPayloadWriter("/ppt/media/missing.m4a"); err == nil {
		t.Fatal("expected missing part to be refused")
	}
	if _, err := rw.OpenPayloadWriter("/ppt/slides/_rels/slide1.xml.rels"); err == nil {
		t.Fatal("expected relationship part to be refused")
	}
}

func readMembers(t *testing.T, path string) map[string][]byte {
	t.Helper()
	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	defer r.Close()
	out := map[string][]byte{}
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(rc)
		rc.Close()
		out[f.Name] = buf.Bytes()
	}
	return out
}

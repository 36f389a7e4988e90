package pptx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"slidevox/internal/services"
)

// TempPattern matches the sibling temp files Commit writes before renaming.
const TempPattern = ".*.slidevox-tmp"

// PayloadWriter replaces the bytes of one existing part. Writes are buffered
// and become visible to ReadPayload when the writer is closed.
type PayloadWriter struct {
	pkg    *Package
	member string
	buf    bytes.Buffer
	closed bool
}

// OpenPayloadWriter truncates the named part for rewriting. The part must
// already exist.
func (p *Package) OpenPayloadWriter(partName string) (*PayloadWriter, error) {
	if p.closed {
		return nil, services.Wrap(services.ErrStorage, p.path, "open payload", "Package closed", nil)
	}
	if !p.writable {
		return nil, services.Wrap(services.ErrStorage, p.path, "open payload", "Package opened read-only", nil)
	}
	member := memberName(partName)
	if _, ok := p.members[strings.ToLower(member)]; !ok {
		return nil, services.Wrap(services.ErrMalformedPackage, p.path, "open payload", "Part "+partName+" does not exist", nil)
	}
	if strings.Contains(member, "_rels/") || member == contentTypesPart {
		return nil, services.Wrap(services.ErrStorage, p.path, "open payload", "Refusing to rewrite package metadata part "+partName, nil)
	}
	return &PayloadWriter{pkg: p, member: member}, nil
}

func (w *PayloadWriter) Write(b []byte) (int, error) {
	if w.closed {
		return 0, fmt.Errorf("payload writer for %s already closed", w.member)
	}
	return w.buf.Write(b)
}

// Close stores the written bytes as the part's new payload. Calling Close
// more than once is a no-op.
func (w *PayloadWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.pkg.pending == nil {
		return services.Wrap(services.ErrStorage, w.pkg.path, "close payload", "Package closed", nil)
	}
	w.pkg.pending[strings.ToLower(w.member)] = append([]byte(nil), w.buf.Bytes()...)
	return nil
}

// WritePayload replaces a part's payload in one call.
func (p *Package) WritePayload(partName string, data []byte) (err error) {
	w, err := p.OpenPayloadWriter(partName)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = w.Write(data)
	return err
}

// Dirty reports whether uncommitted rewrites exist.
func (p *Package) Dirty() bool {
	return len(p.pending) > 0
}

// Commit writes pending rewrites to disk atomically. Without pending
// rewrites the file is left untouched.
func (p *Package) Commit() error {
	if p.closed {
		return services.Wrap(services.ErrStorage, p.path, "commit", "Package closed", nil)
	}
	if !p.writable {
		return services.Wrap(services.ErrStorage, p.path, "commit", "Package opened read-only", nil)
	}
	if !p.Dirty() {
		return nil
	}

	info, err := os.Stat(p.path)
	if err != nil {
		return services.Wrap(services.ErrStorage, p.path, "commit", "Stat package", err)
	}
	dir := filepath.Dir(p.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(p.path)+".*.slidevox-tmp")
	if err != nil {
		return services.Wrap(services.ErrStorage, p.path, "commit", "Create temp file", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if err := p.writeArchive(tmp); err != nil {
		return services.Wrap(services.ErrStorage, p.path, "commit", "Write archive", err)
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		return services.Wrap(services.ErrStorage, p.path, "commit", "Preserve permissions", err)
	}
	if err := tmp.Sync(); err != nil {
		return services.Wrap(services.ErrStorage, p.path, "commit", "Sync temp file", err)
	}
	if err := tmp.Close(); err != nil {
		return services.Wrap(services.ErrStorage, p.path, "commit", "Close temp file", err)
	}

	if err := p.reader.Close(); err != nil {
		return services.Wrap(services.ErrStorage, p.path, "commit", "Close archive", err)
	}
	p.reader = nil
	if err := os.Rename(tmpPath, p.path); err != nil {
		_ = p.load()
		return services.Wrap(services.ErrStorage, p.path, "commit", "Replace package", err)
	}
	committed = true

	p.pending = map[string][]byte{}
	return p.load()
}

func (p *Package) writeArchive(out io.Writer) error {
	zw := zip.NewWriter(out)
	for _, f := range p.reader.File {
		data, rewritten := p.pending[strings.ToLower(memberName(f.Name))]
		if !rewritten {
			if err := copyRaw(zw, f); err != nil {
				return fmt.Errorf("copy %s: %w", f.Name, err)
			}
			continue
		}
		header := &zip.FileHeader{
			Name:     f.Name,
			Method:   f.Method,
			Modified: f.Modified,
			Comment:  f.Comment,
		}
		w, err := zw.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("create %s: %w", f.Name, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("write %s: %w", f.Name, err)
		}
	}
	if comment := p.reader.Comment; comment != "" {
		if err := zw.SetComment(comment); err != nil {
			return err
		}
	}
	return zw.Close()
}

func copyRaw(zw *zip.Writer, f *zip.File) error {
	header := f.FileHeader
	w, err := zw.CreateRaw(&header)
	if err != nil {
		return err
	}
	r, err := f.OpenRaw()
	if err != nil {
		return err
	}
	_, err = io.Copy(w, r)
	return err
}

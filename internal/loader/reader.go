package loader

import "io"

// progressReader reports every read to a ProgressFunc.
type progressReader struct {
	r        io.Reader
	total    int64
	loaded   int64
	progress ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.loaded += int64(n)
		if p.progress != nil {
			p.progress(p.loaded, p.total)
		}
	}
	return n, err
}

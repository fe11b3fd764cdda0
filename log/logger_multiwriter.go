package log

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

var errDuplicateOutput = errors.New("output already attached")

// outputs fans a formatted log line out to every destination named in a
// sublogger's Output setting, for example "console|file"
type outputs struct {
	mu   sync.RWMutex
	dest []io.Writer
}

func newOutputs() *outputs {
	return &outputs{}
}

// attach adds w unless the same destination is already present
func (o *outputs) attach(w io.Writer) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, d := range o.dest {
		if d == w {
			return fmt.Errorf("%T %w", w, errDuplicateOutput)
		}
	}
	o.dest = append(o.dest, w)
	return nil
}

// Write sends p to each destination and reports the first one that fails or
// accepts fewer bytes
func (o *outputs) Write(p []byte) (int, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, d := range o.dest {
		n, err := d.Write(p)
		switch {
		case err != nil:
			return n, fmt.Errorf("%T %w", d, err)
		case n < len(p):
			return n, fmt.Errorf("%T %w", d, io.ErrShortWrite)
		}
	}
	return len(p), nil
}

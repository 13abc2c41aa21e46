package restlog

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Transaction is the most recent request and response seen by a REST client.
type Transaction struct {
	URL          string
	StatusCode   int
	Header       http.Header
	Params       Params
	ResponseBody string
	// Received is when the response arrived. It stands in for a missing Date header.
	Received time.Time
}

// TransactionSource gives access to a REST client's last transaction. It returns
// nil and no error if no response is available, for instance because no request was
// sent yet.
type TransactionSource interface {
	LastTransaction() (*Transaction, error)
}

// OutputDir maps a file name to a path in the run's output directory.
type OutputDir interface {
	Path(name string) (string, error)
}

// Attacher associates a file with the report entry of the current test.
type Attacher interface {
	Attach(path, label, mimeType string) error
}

// DirResolver is an OutputDir for a directory on disk, which is created on first use.
type DirResolver struct {
	Dir string
}

func (d DirResolver) Path(name string) (string, error) {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	return filepath.Abs(filepath.Join(d.Dir, name))
}

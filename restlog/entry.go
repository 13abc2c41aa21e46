package restlog

// LogEntry is one captured request/response observation.
type LogEntry struct {
	Date         string
	URL          string
	Params       Params
	StatusCode   int
	ResponseBody string
}

func (e LogEntry) Equal(other LogEntry) bool {
	return e.Date == other.Date &&
		e.URL == other.URL &&
		e.StatusCode == other.StatusCode &&
		e.ResponseBody == other.ResponseBody &&
		e.Params.Equal(other.Params)
}

// TestLog is the ordered list of entries captured during one test.
type TestLog []LogEntry

// Add appends e unless it is equal to the last entry. Only the immediate predecessor
// is compared, so an entry can appear again after a different one.
func (l *TestLog) Add(e LogEntry) bool {
	if n := len(*l); n > 0 && (*l)[n-1].Equal(e) {
		return false
	}
	*l = append(*l, e)
	return true
}

func (l *TestLog) Reset() {
	*l = nil
}

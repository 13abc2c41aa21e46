package restlog

import (
	"testing"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/stretchr/testify/assert"
)

func makeEntry(url string) LogEntry {
	return LogEntry{
		Date:         "Mon, 01 Jan 2024 00:00:00 GMT",
		URL:          url,
		Params:       Structured(Field("id", ldvalue.Int(1))),
		StatusCode:   200,
		ResponseBody: `{"ok":true}`,
	}
}

func TestTestLogCollapsesImmediateDuplicates(t *testing.T) {
	var log TestLog
	assert.True(t, log.Add(makeEntry("http://x/a")))
	assert.False(t, log.Add(makeEntry("http://x/a")))
	assert.Len(t, log, 1)
}

func TestTestLogKeepsNonAdjacentDuplicates(t *testing.T) {
	var log TestLog
	log.Add(makeEntry("http://x/a"))
	log.Add(makeEntry("http://x/b"))
	log.Add(makeEntry("http://x/a"))
	assert.Len(t, log, 3)
}

func TestTestLogComparesAllFields(t *testing.T) {
	base := makeEntry("http://x/a")
	variants := []func(*LogEntry){
		func(e *LogEntry) { e.Date = "Mon, 01 Jan 2024 00:00:01 GMT" },
		func(e *LogEntry) { e.Params = Structured(Field("id", ldvalue.Int(2))) },
		func(e *LogEntry) { e.StatusCode = 201 },
		func(e *LogEntry) { e.ResponseBody = `{"ok":false}` },
	}
	for _, change := range variants {
		var log TestLog
		log.Add(base)
		e := base
		change(&e)
		assert.True(t, log.Add(e))
		assert.Len(t, log, 2)
	}
}

func TestTestLogReset(t *testing.T) {
	var log TestLog
	log.Add(makeEntry("http://x/a"))
	log.Reset()
	assert.Len(t, log, 0)
}

package logsvc

import (
	"bytes"
	"log"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-reports/core"
)

func newTestLogger(buf *bytes.Buffer, debug bool) *RollbarLogger {
	l := NewRollbarLogger(log.New(buf, "", 0), &core.Config{Env: "TEST", TestMode: true, Debug: debug})
	l.Enable(false)
	return l
}

func TestRollbarLogger_prepare(t *testing.T) {
	l := newTestLogger(&bytes.Buffer{}, true)
	err := errors.New("boom")
	req := httptest.NewRequest("GET", "/v1/reports/students", nil)

	args := l.prepare("report failed", []interface{}{
		err, req, map[string]interface{}{"report": "students"}, map[string]interface{}{"rows": 3}, 42,
	})
	require.Len(t, args, 4)
	assert.Equal(t, "report failed", args[0])
	assert.Equal(t, err, args[1])
	assert.Equal(t, req, args[2])
	assert.Equal(t, map[string]interface{}{"report": "students", "rows": 3, "args": []string{"42"}}, args[3])

	assert.Equal(t, []interface{}{"plain"}, l.prepare("plain", nil))
}

func TestRollbarLogger_print(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, false)

	l.Debug("hidden")
	assert.Empty(t, buf.String())

	l.Warn("slow report", map[string]interface{}{"report": "fees"})
	assert.Equal(t, "[WARN] slow report\n\tmap[report:fees]\n", buf.String())
}

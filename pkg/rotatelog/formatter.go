package rotatelog

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// Formatter renders logrus entries in the log file line format:
//
//	[2006-01-02 15:04:05] INFO message key=value ...
type Formatter struct{}

var _ logrus.Formatter = &Formatter{}

func (f *Formatter) Format(e *logrus.Entry) ([]byte, error) {
	b := &bytes.Buffer{}

	fmt.Fprintf(b, "[%s] %s %s", e.Time.Format(TimeFormat), strings.ToUpper(e.Level.String()), e.Message)

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := fmt.Sprint(e.Data[k])
		if strings.ContainsAny(v, " \t\"=") {
			v = fmt.Sprintf("%q", v)
		}
		fmt.Fprintf(b, " %s=%s", k, v)
	}

	b.WriteByte('\n')

	return b.Bytes(), nil
}

package frag

import (
	"runtime/debug"
	"sync"

	"github.com/sirupsen/logrus"
)

// rawWarnOnce gates the one-time raw() usage warning required by the
// fragment algebra's error-handling design: raw() is dangerous by
// construction (it is the sole entry point that turns an untrusted string
// into a trusted fragment without any escaping), so its first use per
// process is logged, stack trace included, to help a reviewer spot
// accidental use where a safer constructor would do.
var rawWarnOnce sync.Once

var warnLog = logrus.New()

func warnRawUsage() {
	rawWarnOnce.Do(func() {
		warnLog.WithField("stack", string(debug.Stack())).
			Warn("frag: raw() called — raw() bypasses all escaping; prefer Identifier, Value, or Literal")
	})
}

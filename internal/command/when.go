package command

import (
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var whenParser *when.Parser

func init() {
	whenParser = when.New(nil)
	whenParser.Add(en.All...)
	whenParser.Add(common.All...)
}

// DueTime extracts a natural-language due time ("tomorrow at 7:15am",
// "Feb 10 at 4pm") from a command payload, relative to now. The second
// return value is false when the payload carries no recognizable time;
// the command is then stored without a due time.
func DueTime(payload string, now time.Time) (time.Time, bool) {
	r, err := whenParser.Parse(payload, now)
	if err != nil || r == nil {
		return time.Time{}, false
	}
	return r.Time, true
}

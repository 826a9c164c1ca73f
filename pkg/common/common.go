package common

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"
)

var (
	snowflakeNode *snowflake.Node
	nodeOnce      sync.Once
	nodeId        int64 = 1
)

// SetupNode configures the snowflake node id, call once before the first
// UUIDint64. Later calls have no effect.
func SetupNode(id int64) {
	if id > 0 {
		nodeId = id
	}
}

func node() *snowflake.Node {
	nodeOnce.Do(func() {
		n, err := snowflake.NewNode(nodeId)
		if err != nil {
			panic(err)
		}
		snowflakeNode = n
	})
	return snowflakeNode
}

// UUIDint64 returns a cluster-unique int64 identifier.
func UUIDint64() int64 {
	return node().Generate().Int64()
}

// UUID returns a cluster-unique identifier string.
func UUID() string {
	return node().Generate().String()
}

// NextNumber builds a human-facing document number such as INV-6982… or DEV-6982…
func NextNumber(prefix string) string {
	return fmt.Sprintf("%s-%d", strings.ToUpper(prefix), UUIDint64())
}

// IfEmptyStr returns defval when src is blank.
func IfEmptyStr(src string, defval string) string {
	if strings.TrimSpace(src) == "" {
		return defval
	}
	return src
}

// FmtDate formats a time as the date-only form used across list endpoints.
func FmtDate(t time.Time) string {
	return t.Format("2006-01-02")
}

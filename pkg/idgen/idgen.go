package idgen

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	once sync.Once
	node *snowflake.Node
)

func nodeID() int64 {
	if s := os.Getenv("WMS_NODE_ID"); s != "" {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	}
	return 1
}

// Generate returns a globally unique snowflake id.
func Generate() snowflake.ID {
	once.Do(func() {
		n, err := snowflake.NewNode(nodeID())
		if err != nil {
			panic(err)
		}
		node = n
	})
	return node.Generate()
}

// DocNumber builds a human-facing document number such as OUT-1783942.
func DocNumber(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, Generate())
}

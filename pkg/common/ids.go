package common

import (
	"math/rand"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/pkg/errors"
)

// MaxNodeID is the largest snowflake node id
var MaxNodeID int64 = -1 ^ (-1 << snowflake.NodeBits)

var (
	nodeMu sync.Mutex
	node   *snowflake.Node
)

// SetNode pins the snowflake node used by UUIDint64. Processes sharing one
// database need distinct node ids; without a call a random node is picked.
func SetNode(id int64) error {
	n, err := snowflake.NewNode(id)
	if err != nil {
		return errors.Wrapf(err, "snowflake node %d", id)
	}
	nodeMu.Lock()
	node = n
	nodeMu.Unlock()
	return nil
}

func idNode() *snowflake.Node {
	nodeMu.Lock()
	defer nodeMu.Unlock()
	if node == nil {
		n, err := snowflake.NewNode(rand.Int63n(MaxNodeID + 1))
		if err != nil {
			panic(err)
		}
		node = n
	}
	return node
}

// UUIDint64 returns a time ordered unique int64
func UUIDint64() int64 {
	return idNode().Generate().Int64()
}

// OrderNumber returns a unique, sortable order number
func OrderNumber() string {
	return strconv.FormatInt(UUIDint64(), 10)
}

package repository

// DefaultRedisPrefix is prepended to every key the Redis store writes
const DefaultRedisPrefix = "signupsaver:"

// rootKey names the children list of the root in Redis keys
const rootKey = "root"

type redisKeys struct {
	prefix string
}

// node returns the key holding a node's JSON
func (k redisKeys) node(id string) string {
	return k.prefix + "node:" + id
}

// children returns the key of the ordered list of a node's child ids
func (k redisKeys) children(id string) string {
	if id == "" {
		id = rootKey
	}
	return k.prefix + "children:" + id
}

// all returns the key of the set of every node id
func (k redisKeys) all() string {
	return k.prefix + "nodes:all"
}

// seq returns the key of the id counter
func (k redisKeys) seq() string {
	return k.prefix + "seq"
}

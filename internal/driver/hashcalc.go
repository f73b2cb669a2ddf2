package driver

import (
	"strconv"

	"jopa/internal/project"
)

// cacheSchemaDigest changes whenever the payload layout does, so results
// written by older binaries are never looked up.
var cacheSchemaDigest = project.DigestString("jopa-results/" + strconv.Itoa(int(diskCacheSchemaVersion)))

// CacheKey is H(content || options || schema).
func CacheKey(content, options project.Digest) project.Digest {
	return project.Combine(content, options, cacheSchemaDigest)
}

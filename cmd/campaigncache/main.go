// Campaigncache drives and inspects the campaign cache from the command line.
//
// Usage:
//
//	campaigncache bench --duration 10s --http :8080   # synthetic load, /metrics exposed
//	campaigncache inspect /var/cache/campaigns/3_cache.json --ttl 1h
//
// Defaults for shard count, TTL, capacity, directory and policy come from
// the CAMPAIGNCACHE_* environment variables.
package main

import (
	"os"

	"github.com/IvanBrykalov/campaigncache/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}

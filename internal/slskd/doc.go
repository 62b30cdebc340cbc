// Package slskd is a thin REST client for a slskd download daemon.
//
// The daemon owns the actual Soulseek peer connections; this package only
// drives its HTTP API: submit a search, poll its state, collect the
// per-peer responses, delete the search, enqueue transfers and list the
// download queue.
//
// Example:
//
//	client := slskd.NewClient("http://localhost:5030", apiKey, 30*time.Second)
//	search, err := client.StartSearch(ctx, "artist title", 15*time.Second)
package slskd

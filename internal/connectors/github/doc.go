// Package github loads a knowledge base from the .txt files of a GitHub
// repository.
//
// # Layout
//
// A knowledge base is every blob ending in .txt under an optional path
// prefix of one repository, read at a branch, tag or commit (default: the
// repository's default branch). The whole tree is listed with one recursive
// Git Trees API call and each file is fetched as a blob, so a knowledge base
// of n files costs n+2 requests.
//
// # Authentication
//
// A personal access token is optional for public repositories. Without one,
// GitHub allows 60 requests per hour; with one, 5,000.
//
// # Rate limiting
//
// The client throttles proactively with a token bucket and also tracks the
// X-RateLimit-* response headers, pausing until the reset time when the
// remaining quota drops below a safety buffer.
package github

// Package llm wraps generative text providers behind a single prompt-in,
// text-out Client. Generator adds retries, rate limiting and response caching
// on top of any provider.
package llm

// deepseek-proxy is an OpenAI-compatible chat completion proxy in front of
// DeepSeek-style inference providers.
//
// It accepts standard chat completion requests, bounds long conversation
// histories, retries across a configurable model fallback chain, and
// normalizes responses (including fusing the reasoning channel into visible
// content) for clients that only understand the OpenAI wire format.
//
// Usage:
//
//	# Start with default configuration
//	deepseek-proxy run
//
//	# Start with a custom configuration file
//	deepseek-proxy run --config /etc/deepseek-proxy/config.yaml
//
//	# Validate configuration without starting
//	deepseek-proxy run --dry-run
//
//	# Show version information
//	deepseek-proxy version
package main

func main() {
	Execute()
}

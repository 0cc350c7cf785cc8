// Package config loads and validates the proxy configuration.
//
// Configuration comes from a YAML file, with defaults applied for anything
// omitted and DSPROXY_* environment variables overriding both. Environment
// always wins:
//
//	server:
//	  listen_address: ":8080"
//	upstream:
//	  base_url: "https://api.deepseek.com"
//	  api_key: "sk-..."
//	models:
//	  primary: "deepseek-chat"
//	  fallbacks: ["deepseek-coder"]
//	  show_reasoning: true
//	truncation:
//	  enabled: true
//	streaming:
//	  enabled: true
//
// A Watcher can monitor the file and hot-reload the fallback model list and
// truncation tiers without a restart; other settings require one.
package config

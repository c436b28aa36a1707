package config

// ParseConfig overlays a generic configuration map onto c. This is the
// entry point used when the assistant runs embedded and its host hands
// over configuration as decoded JSON, where numbers arrive as float64.
// Unknown keys are ignored; absent keys keep their current values.
func (c *Config) ParseConfig(cfg map[string]any) error {
	if llm, ok := cfg["llm"].(map[string]any); ok {
		if v, ok := llm["provider"].(string); ok {
			c.LLM.Provider = v
		}
		if v, ok := llm["api_key"].(string); ok {
			c.LLM.APIKey = v
		}
		if v, ok := llm["base_url"].(string); ok {
			c.LLM.BaseURL = v
		}
		if v, ok := llm["model"].(string); ok {
			c.LLM.Model = v
		}
		if v, ok := llm["temperature"].(float64); ok {
			c.LLM.Temperature = v
		}
		if v, ok := llm["max_tokens"].(float64); ok {
			c.LLM.MaxTokens = int(v)
		}
		if v, ok := llm["top_p"].(float64); ok {
			c.LLM.TopP = v
		}
	}

	if reg, ok := cfg["registry"].(map[string]any); ok {
		if v, ok := reg["base_url"].(string); ok {
			c.Registry.BaseURL = v
		}
		if v, ok := reg["patients_path"].(string); ok {
			c.Registry.PatientsPath = v
		}
		if v, ok := reg["timeout_seconds"].(float64); ok {
			c.Registry.TimeoutSeconds = int(v)
		}
		if v, ok := reg["default_limit"].(float64); ok {
			c.Registry.DefaultLimit = int(v)
		}
		if v, ok := reg["cache_ttl_seconds"].(float64); ok {
			c.Registry.CacheTTLSeconds = int(v)
		}
		if v, ok := reg["cache_size"].(float64); ok {
			c.Registry.CacheSize = int(v)
		}
	}

	if conv, ok := cfg["conversation"].(map[string]any); ok {
		if v, ok := conv["max_messages"].(float64); ok {
			c.Conversation.MaxMessages = int(v)
		}
		if v, ok := conv["prompt_window"].(float64); ok {
			c.Conversation.PromptWindow = int(v)
		}
		if v, ok := conv["summary_messages"].(float64); ok {
			c.Conversation.SummaryMessages = int(v)
		}
	}

	if sess, ok := cfg["session"].(map[string]any); ok {
		if v, ok := sess["ttl_seconds"].(float64); ok {
			c.Session.TTLSeconds = int(v)
		}
		if v, ok := sess["clean_interval_seconds"].(float64); ok {
			c.Session.CleanIntervalSeconds = int(v)
		}
	}

	if httpCfg, ok := cfg["http"].(map[string]any); ok {
		hc := c.HTTP
		if hc == nil {
			hc = &HTTPClientConfig{}
			c.HTTP = hc
		}
		if v, ok := httpCfg["timeout_ms"].(float64); ok {
			hc.TimeoutMs = int(v)
		}
		if v, ok := httpCfg["retry"].(float64); ok {
			hc.Retry = int(v)
		}
		if v, ok := httpCfg["backoff_min_ms"].(float64); ok {
			hc.BackoffMinMs = int(v)
		}
		if v, ok := httpCfg["backoff_max_ms"].(float64); ok {
			hc.BackoffMaxMs = int(v)
		}
		if v, ok := httpCfg["max_consecutive_failures"].(float64); ok {
			hc.MaxConsecutiveFailures = int(v)
		}
		if v, ok := httpCfg["circuit_open_seconds"].(float64); ok {
			hc.CircuitOpenSeconds = int(v)
		}
		if arr, ok := httpCfg["host_allowlist"].([]any); ok {
			for _, a := range arr {
				if s, ok := a.(string); ok {
					hc.HostAllowlist = append(hc.HostAllowlist, s)
				}
			}
		}
	}

	if logCfg, ok := cfg["log"].(map[string]any); ok {
		if v, ok := logCfg["level"].(string); ok {
			c.Log.Level = v
		}
	}

	return c.Validate()
}

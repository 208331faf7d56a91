package app

// defaultConfig holds the value of every key the service reads when neither
// the config file nor the environment sets it.
var defaultConfig = map[string]any{
	"app.tz":                               "UTC",
	"app.http.host":                        "",
	"app.http.port":                        8080,
	"app.http.read_timeout_seconds":        15,
	"app.http.read_header_timeout_seconds": 5,
	"app.http.write_timeout_seconds":       30,
	"app.http.idle_timeout_seconds":        60,
	"app.http.shutdown_timeout_seconds":    10,
	"app.http.cors":                        "*",
	"app.max_goroutine":                    16,
	"app.maintenance.endpoints":            "",
	"http.trust_proxy_headers":             false,
	"instrument.enabled":                   false,
	"instrument.service_name":              "otpgate",
	"instrument.service_version":           "dev",
	"instrument.env":                       "local",
	"instrument.log_level":                 "info",
	"instrument.log_mask_fields":           "code,password,api_key",
	"instrument.trace_sample_ratio":        1.0,
	"instrument.metric_interval_seconds":   15,
	"otp.ttl_seconds":                      300,
	"otp.length":                           6,
	"otp.max_verify_attempts":              0,
	"otp.reset_endpoint_enabled":           false,
	"rate_limit.window_ms":                 60000,
	"rate_limit.max_attempts":              5,
	"rate_limit.enforce_before_delivery":   true,
	"store.backend_url":                    "",
	"store.key_prefix":                     "otp:",
	"store.connect_attempts":               3,
	"store.connect_base_delay_ms":          1000,
	"store.connect_max_delay_ms":           10000,
	"store.ping_timeout_seconds":           10,
	"store.monitor_interval_seconds":       5,
	"sms.driver":                           "textbee",
	"sms.textbee.base_url":                 "https://api.textbee.dev/api/v1",
	"sms.textbee.api_key":                  "",
	"sms.textbee.device_id":                "",
	"sms.sns.region":                       "",
	"mail.from":                            "noreply@example.com",
	"mail.subject":                         "Your verification code",
	"mail.smtp.host":                       "smtp.zoho.com",
	"mail.smtp.port":                       465,
	"mail.smtp.secure":                     true,
	"mail.smtp.username":                   "",
	"mail.smtp.password":                   "",
	"mail.smtp.timeout_seconds":            10,
}

// envAliases keeps the flat variable names of earlier deployments working
// next to the derived ones (REDIS_URL as well as STORE_BACKEND_URL).
var envAliases = map[string][]string{
	"app.http.port":           {"PORT"},
	"rate_limit.max_attempts": {"RATE_LIMIT_MAX"},
	"store.backend_url":       {"REDIS_URL"},
	"sms.textbee.base_url":    {"TEXTBEE_API_BASE"},
	"sms.textbee.api_key":     {"TEXTBEE_API_KEY"},
	"sms.textbee.device_id":   {"TEXTBEE_DEVICE_ID"},
	"mail.from":               {"EMAIL_FROM"},
	"mail.smtp.host":          {"SMTP_HOST"},
	"mail.smtp.port":          {"SMTP_PORT"},
	"mail.smtp.secure":        {"SMTP_SECURE"},
	"mail.smtp.username":      {"SMTP_USER"},
	"mail.smtp.password":      {"SMTP_PASS"},
}

package model

import "time"

const DefaultConnectTimeout = 2 * time.Second
const DefaultShutdownTimeout = 5 * time.Second
const DefaultCompletionTimeout = 30 * time.Second

const DefaultMaxTokens = 150
const CompletionStop = "\n"

const HeaderContentType = "Content-Type"
const HeaderAuthorization = "Authorization"
const HeaderRetryAfter = "Retry-After"
const ContentTypeJSON = "application/json"

const MaxRequestBodyBytes = 1 << 20

type ContextKey string

const KeyContextLogger ContextKey = "logger"

const KeyLoggerError = "error"

package middlewares

const (
	CtxRequestID = "request_id"
	CtxUsername  = "session.username"
)

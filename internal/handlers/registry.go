package handlers

// AppHandlers содержит все HTTP-обработчики приложения.
type AppHandlers struct {
	Auth      *AuthHandler
	Discovery *DiscoveryHandler
	Response  *ResponseHandler
}

package api

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/ws", s.hub.HandleWebSocket)

	api := s.echo.Group("/api/v1")
	api.GET("/status", s.getStatus)

	api.GET("/dataset", s.getDataset)
	api.GET("/summary", s.getSummary)

	sessions := api.Group("/sessions")
	sessions.POST("", s.createSession)
	sessions.GET("/:id", s.getSession)
	sessions.PUT("/:id/criteria", s.setSessionCriteria)
	sessions.GET("/:id/summary", s.getSessionSummary)
	sessions.GET("/:id/charts", s.getSessionCharts)
	sessions.GET("/:id/records", s.getSessionRecords)
	sessions.GET("/:id/export", s.exportSession)

	s.presetHandlers.RegisterRoutes(api.Group("/presets"))
	api.POST("/presets/:id/apply", s.applyPreset)

	s.historyHandlers.RegisterRoutes(api.Group("/history"))
}

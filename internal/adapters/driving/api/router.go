package api

// registerRoutes registers every route under /api/v1.
func (s *Server) registerRoutes() {
	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/similarity/pairs", s.handlePairs)
		v1.GET("/similarity/matrix", s.handleMatrix)
		v1.GET("/segments/:id/similar", s.handleSimilarSegments)
		v1.GET("/search", s.handleSearch)
		v1.POST("/ask", s.handleAsk)
	}
}

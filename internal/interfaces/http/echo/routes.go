package echo

import e "github.com/labstack/echo/v4"

func RegisterRoutes(server *e.Echo, importHandler *ImportHandler) {
	imports := server.Group("/api/v1/imports/members")
	imports.POST("", importHandler.StartImport)
	imports.GET("/:id", importHandler.GetStatus)
	imports.POST("/:id/cancel", importHandler.Cancel)
}

package router

import "github.com/gin-gonic/gin"

// Module is a feature area (users, cart, orders, catalog, admin) that mounts
// its own routes and guards on the group it is given.
type Module interface {
	Register(rg *gin.RouterGroup)
}

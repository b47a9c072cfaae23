package router

import (
	"time"

	"granimar/internal/config"
	"granimar/internal/handler"
	"granimar/internal/infra"
	"granimar/internal/middleware"
	"granimar/internal/repository"
	"granimar/internal/service"
	"granimar/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps carries the shared infrastructure handed in from main.
type Deps struct {
	DB         *gorm.DB
	RDB        *redis.Client
	TipoCambio infra.TipoCambioClient
	Dispatcher *worker.Dispatcher
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.Metrics())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(deps.DB)
	materialRepo := repository.NewMaterialRepository(deps.DB)
	retiroRepo := repository.NewRetiroRepository(deps.DB)
	sobroRepo := repository.NewSobroRepository(deps.DB)
	movimientoRepo := repository.NewMovimientoMaterialRepository(deps.DB)
	prestamoRepo := repository.NewPrestamoRepository(deps.DB)
	facturaRepo := repository.NewFacturaRepository(deps.DB)
	gastoRepo := repository.NewGastoRepository(deps.DB)

	// ── Services ─────────────────────────────────────────────────────────────
	usuarioSvc := service.NewUsuarioService(usuarioRepo)
	materialSvc := service.NewMaterialService(materialRepo, movimientoRepo)
	retiroSvc := service.NewRetiroService(retiroRepo, materialRepo, sobroRepo, movimientoRepo, service.GeometriaEstandar())
	sobroSvc := service.NewSobroService(sobroRepo, materialRepo)
	prestamoSvc := service.NewPrestamoService(prestamoRepo)
	facturaSvc := service.NewFacturaService(facturaRepo, deps.TipoCambio, deps.Dispatcher)
	gastoSvc := service.NewGastoService(gastoRepo, retiroRepo)
	reporteSvc := service.NewReporteService(materialRepo, sobroRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	usuariosH := handler.NewUsuariosHandler(usuarioSvc)
	materialesH := handler.NewMaterialesHandler(materialSvc)
	retirosH := handler.NewRetirosHandler(retiroSvc)
	sobrosH := handler.NewSobrosHandler(sobroSvc)
	prestamosH := handler.NewPrestamosHandler(prestamoSvc)
	facturasH := handler.NewFacturasHandler(facturaSvc)
	gastosH := handler.NewGastosHandler(gastoSvc)
	reportesH := handler.NewReportesHandler(reporteSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(deps.DB, deps.RDB, deps.TipoCambio))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		mats := v1.Group("/materiales")
		{
			mats.POST("", materialesH.Crear)
			mats.GET("", materialesH.Listar)
			mats.GET("/alertas", materialesH.ObtenerAlertas)
			mats.GET("/movimientos", materialesH.ListarMovimientos)
			mats.GET("/:id", materialesH.Obtener)
			mats.PUT("/:id", materialesH.Actualizar)
			mats.DELETE("/:id", materialesH.Desactivar)
			mats.PATCH("/:id/reactivar", materialesH.Reactivar)
			mats.POST("/:id/ajuste-stock", materialesH.AjustarStock)
		}

		rets := v1.Group("/retiros")
		{
			rets.POST("/calcular", retirosH.CalcularRetiro)
			rets.POST("", retirosH.RegistrarRetiro)
			rets.GET("", retirosH.ListarRetiros)
			rets.DELETE("/:id", retirosH.AnularRetiro)
		}

		sobros := v1.Group("/sobros")
		{
			sobros.POST("", sobrosH.Crear)
			sobros.GET("", sobrosH.Listar)
			sobros.PATCH("/:id", sobrosH.Actualizar)
		}

		prestamos := v1.Group("/prestamos")
		{
			prestamos.POST("", prestamosH.Crear)
			prestamos.GET("", prestamosH.Listar)
			prestamos.GET("/:id", prestamosH.Obtener)
			prestamos.POST("/:id/abonos", prestamosH.RegistrarAbono)
			prestamos.DELETE("/:id/abonos/:abono_id", prestamosH.EliminarAbono)
		}

		facturas := v1.Group("/facturas")
		{
			facturas.POST("", facturasH.Crear)
			facturas.GET("", facturasH.Listar)
			facturas.GET("/:id", facturasH.Obtener)
			facturas.GET("/:id/pdf", facturasH.DescargarPDF)
			facturas.POST("/:id/pagos", facturasH.RegistrarPago)
			facturas.POST("/:id/reintentar", facturasH.ReintentarDocumento)
			facturas.DELETE("/:id", facturasH.Anular)
		}

		gastos := v1.Group("/gastos")
		{
			gastos.POST("", gastosH.Crear)
			gastos.GET("", gastosH.Listar)
			gastos.GET("/resumen", gastosH.ResumenMensual)
			gastos.PUT("/:id", gastosH.Actualizar)
			gastos.DELETE("/:id", gastosH.Eliminar)
		}

		v1.GET("/reportes/inventario", reportesH.InventarioExcel)

		usuarios := v1.Group("/usuarios")
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}

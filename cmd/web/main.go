package main

import (
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"

	"contact-book/pkg/common/config"
	accountmodel "contact-book/pkg/core/account/model"
	accountdao "contact-book/pkg/core/account/repository/dao"
	accountimpl "contact-book/pkg/core/account/repository/dao/impl"
	accountmem "contact-book/pkg/core/account/repository/dao/memory"
	accountsvc "contact-book/pkg/core/account/service"
	contactmodel "contact-book/pkg/core/contact/model"
	contactdao "contact-book/pkg/core/contact/repository/dao"
	contactimpl "contact-book/pkg/core/contact/repository/dao/impl"
	contactmem "contact-book/pkg/core/contact/repository/dao/memory"
	contactsvc "contact-book/pkg/core/contact/service"
	"contact-book/pkg/web/router"
)

func main() {
	// 初始化配置
	cfg := config.Load()
	hlog.SetLevel(cfg.HlogLevel())

	var (
		accounts accountdao.AccountRepository
		contacts contactdao.ContactRepository
		services router.Services
	)

	switch cfg.Database.Driver {
	case config.DriverMemory:
		hlog.Warn("using in-memory storage, data is lost on restart")
		accounts = accountmem.NewAccountRepo()
		contacts = contactmem.NewContactRepo()
	default:
		// 初始化数据库连接
		db, err := cfg.InitDB()
		if err != nil {
			panic("Failed to initialize database: " + err.Error())
		}
		if cfg.Database.AutoMigrate {
			if err := accountmodel.AutoMigrate(db); err != nil {
				panic("Failed to migrate accounts: " + err.Error())
			}
			if err := contactmodel.AutoMigrate(db); err != nil {
				panic("Failed to migrate contacts: " + err.Error())
			}
		}
		sqlDB, err := db.DB()
		if err != nil {
			panic("Failed to get sql.DB: " + err.Error())
		}
		services.DB = sqlDB

		// 注入到DAO层
		accounts = accountimpl.NewGormAccountRepository(db)
		contacts = contactimpl.NewGormContactRepository(db)
	}

	hasher, err := accountsvc.NewPasswordHasher(cfg.Password.Algorithm, cfg.Password.BcryptCost)
	if err != nil {
		panic("Invalid password config: " + err.Error())
	}
	services.Accounts = accountsvc.NewService(accounts, hasher)
	services.Contacts = contactsvc.NewService(contacts, cfg.Contacts.PageSize)

	// 创建Hertz实例
	h := server.Default(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
	)

	// 注册路由
	if err := router.RegisterAPIs(h, cfg, services); err != nil {
		panic("Failed to register routes: " + err.Error())
	}

	// 启动服务
	h.Spin()
}

package main

import (
	"ecourse-admin/internal/config"
	"ecourse-admin/internal/delivery/http/utils"
	"flag"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

// Выпускает JWT администратора для /resource. Токен передается в куке session
// или в заголовке Authorization: Bearer.
func main() {
	subject := flag.String("subject", "admin", "имя администратора в токене")
	ttl := flag.Duration("ttl", 24*time.Hour, "срок жизни токена")
	flag.Parse()

	err := godotenv.Load()
	if err != nil {
		log.Info(".env файл не обнаружен")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка в конфигурации: %v", err)
	}
	if err := cfg.Validate(config.AdminTokenRequired); err != nil {
		log.Fatalf("Ошибка в конфигурации: %v", err)
	}

	token, err := utils.NewAuthManager([]byte(cfg.AdminJWTSecret), *ttl).CreateToken(*subject)
	if err != nil {
		log.Fatalf("Ошибка при создании токена: %v", err)
	}
	fmt.Println(token)
}

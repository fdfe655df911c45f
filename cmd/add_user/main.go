package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"rubric_backend/internal/config"
	"rubric_backend/internal/repository"
	"rubric_backend/internal/service"
	"rubric_backend/pkg/database"
)

// 用法: go run ./cmd/add_user -name "Ada" -email ada@example.edu -password secret123 -role instructor
func main() {
	configDir := flag.String("config", "configs", "配置文件目录")
	name := flag.String("name", "", "用户名")
	email := flag.String("email", "", "邮箱")
	password := flag.String("password", "", "密码（至少8位）")
	role := flag.String("role", "instructor", "角色: student, teaching_assistant, instructor, administrator, super_administrator")
	instructorID := flag.Uint("instructor", 0, "助教所属教师的用户ID")
	flag.Parse()

	if *name == "" || *email == "" || len(*password) < 8 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	db, err := database.InitDB(&cfg.Database, false)
	if err != nil {
		fmt.Printf("Failed to connect to database: %v\n", err)
		os.Exit(1)
	}

	req := service.RegisterRequest{
		Name:     *name,
		Email:    *email,
		Password: *password,
		Role:     *role,
	}
	if *instructorID != 0 {
		id := *instructorID
		req.InstructorID = &id
	}

	auth := service.NewAuthService(repository.NewUserRepository(db), cfg)
	user, err := auth.Register(context.Background(), req)
	if err != nil {
		fmt.Printf("Error creating user: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("User created successfully: %s (%s, %s) id=%d\n", user.Name, user.Email, user.Role, user.ID)
}

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"coursehub/internal/domain"
	"coursehub/internal/service"
)

// accountAdmin es lo que la consola necesita de service.UserService.
type accountAdmin interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	SetRole(ctx context.Context, email, role string) (domain.User, error)
	RevokeSessions(ctx context.Context, email string) error
	DeleteByEmail(ctx context.Context, email string) error
}

type console struct {
	admin  accountAdmin
	reader *bufio.Reader
	out    io.Writer
}

func newConsole(admin accountAdmin, in io.Reader, out io.Writer) *console {
	return &console{
		admin:  admin,
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// Run lee comandos hasta "salir" o fin de entrada.
func (c *console) Run(ctx context.Context) error {
	fmt.Fprintln(c.out, "===== CourseHub Admin =====")
	c.printHelp()
	for {
		fmt.Fprint(c.out, "admin > ")
		line, err := c.reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("leer input: %w", err)
		}
		line = strings.TrimSpace(line)

		if line != "" {
			if quit := c.exec(ctx, line); quit {
				return nil
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
	}
}

func (c *console) exec(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "salir", "exit", "quit":
		fmt.Fprintln(c.out, "Hasta luego.")
		return true
	case "ayuda", "help":
		c.printHelp()
	case "show":
		if !c.requireArgs(args, 1, "show <email>") {
			return false
		}
		user, err := c.admin.GetByEmail(ctx, args[0])
		if err != nil {
			c.printError(err)
			return false
		}
		c.printUser(user)
	case "role":
		if !c.requireArgs(args, 2, "role <email> <student|instructor|admin>") {
			return false
		}
		user, err := c.admin.SetRole(ctx, args[0], args[1])
		if err != nil {
			c.printError(err)
			return false
		}
		fmt.Fprintf(c.out, "Rol actualizado: %s ahora es %s (aplica al proximo access token).\n", user.Email, user.Role)
	case "revoke":
		if !c.requireArgs(args, 1, "revoke <email>") {
			return false
		}
		if err := c.admin.RevokeSessions(ctx, args[0]); err != nil {
			c.printError(err)
			return false
		}
		fmt.Fprintf(c.out, "Sesion revocada para %s.\n", args[0])
	case "delete":
		if !c.requireArgs(args, 1, "delete <email>") {
			return false
		}
		if !c.confirm(fmt.Sprintf("Eliminar la cuenta %s? [s/N]: ", args[0])) {
			fmt.Fprintln(c.out, "Cancelado.")
			return false
		}
		if err := c.admin.DeleteByEmail(ctx, args[0]); err != nil {
			c.printError(err)
			return false
		}
		fmt.Fprintf(c.out, "Cuenta %s eliminada.\n", args[0])
	default:
		fmt.Fprintln(c.out, "Comando invalido. Escribe 'ayuda'.")
	}
	return false
}

func (c *console) requireArgs(args []string, n int, usage string) bool {
	if len(args) != n {
		fmt.Fprintf(c.out, "Uso: %s\n", usage)
		return false
	}
	return true
}

func (c *console) confirm(prompt string) bool {
	fmt.Fprint(c.out, prompt)
	answer, _ := c.reader.ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "s" || answer == "si" || answer == "y" || answer == "yes"
}

func (c *console) printError(err error) {
	switch {
	case errors.Is(err, service.ErrAccountNotFound):
		fmt.Fprintln(c.out, "Cuenta no encontrada.")
	case errors.Is(err, service.ErrInvalidRole):
		fmt.Fprintln(c.out, "Rol invalido. Usa student, instructor o admin.")
	default:
		fmt.Fprintf(c.out, "Error: %v\n", err)
	}
}

func (c *console) printUser(u domain.User) {
	fmt.Fprintf(c.out, "ID:          %s\n", u.ID)
	fmt.Fprintf(c.out, "Email:       %s\n", u.Email)
	fmt.Fprintf(c.out, "Nombre:      %s\n", u.FullName)
	fmt.Fprintf(c.out, "Rol:         %s\n", u.Role)
	fmt.Fprintf(c.out, "Verificado:  %t\n", u.IsEmailVerified)
	fmt.Fprintf(c.out, "Sesion:      %t\n", u.RefreshTokenHash != "")
	if u.HasPendingOTP() {
		fmt.Fprintf(c.out, "OTP vence:   %s (intentos %d)\n", u.OTPExpiresAt.Format(time.RFC3339), u.OTPAttempts)
	}
	fmt.Fprintf(c.out, "Creada:      %s\n", u.CreatedAt.Format(time.RFC3339))
}

func (c *console) printHelp() {
	fmt.Fprintln(c.out, "Comandos:")
	fmt.Fprintln(c.out, "  show <email>                 muestra el estado de la cuenta")
	fmt.Fprintln(c.out, "  role <email> <rol>           cambia el rol (student, instructor, admin)")
	fmt.Fprintln(c.out, "  revoke <email>               revoca el refresh token vigente")
	fmt.Fprintln(c.out, "  delete <email>               elimina la cuenta")
	fmt.Fprintln(c.out, "  ayuda | salir")
}

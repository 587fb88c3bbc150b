package validator

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/celerix-dev/cadastro/internal/normalize"
	"github.com/celerix-dev/cadastro/pkg/schema"
)

// Failure is one failing check.
type Failure struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// check inspects one field of a record. It returns the failure message and
// true when the field is invalid.
type check struct {
	field string
	run   func(r *Rules, rec schema.RawRecord) (string, bool)
}

// checks run in this order; reasons are reported in the same order.
var checks = []check{
	{schema.FieldName, checkName},
	{schema.FieldEmail, checkEmail},
	{schema.FieldCPF, checkCPF},
	{schema.FieldPhone, checkPhone},
	{schema.FieldBirthDate, checkBirthDate},
	{schema.FieldRegistrationDate, checkRegistrationDate},
	{schema.FieldAge, checkAge},
}

func text(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func checkName(_ *Rules, rec schema.RawRecord) (string, bool) {
	name, ok := text(rec.Name)
	if !ok {
		return "nome inválido por não ser texto", true
	}
	if utf8.RuneCountInString(name) >= MaxNameLength {
		return fmt.Sprintf("Nome inválido: %s - Correção: Precisa ter %d ou menos caracteres", name, MaxNameLength), true
	}
	return "", false
}

// ExpectedEmail derives the address a registrant must use from their name:
// the accent-stripped first and last tokens joined by a period, at gmail.com.
// A single-token name yields that token twice; a non-text or blank name
// yields empty tokens.
func ExpectedEmail(name any) string {
	var first, last string
	if s, ok := text(name); ok {
		if parts := strings.Fields(s); len(parts) > 0 {
			first, last = parts[0], parts[len(parts)-1]
		}
	}
	return normalize.StripAccents(first) + "." + normalize.StripAccents(last) + "@" + EmailDomain
}

func checkEmail(_ *Rules, rec schema.RawRecord) (string, bool) {
	email, ok := text(rec.Email)
	if !ok {
		return "email inválido por não ser texto", true
	}
	expected := ExpectedEmail(rec.Name)
	if strings.EqualFold(email, expected) {
		return "", false
	}
	return fmt.Sprintf("E-mail inválido: %s - Correção: Precisa estar no formato (primeiroNome.últimoNome@gmail.com) - Sugestão: %s",
		email, strings.ToLower(expected)), true
}

func checkCPF(r *Rules, rec schema.RawRecord) (string, bool) {
	cpf, ok := text(rec.CPF)
	if !ok {
		return "cpf inválido por não ser texto", true
	}
	if !r.cpf.MatchString(cpf) {
		return fmt.Sprintf("CPF inválido: %s - Correção: Precisa estar no formato (xxx.xxx.xxx-xx)", cpf), true
	}
	return "", false
}

func checkPhone(r *Rules, rec schema.RawRecord) (string, bool) {
	phone, ok := text(rec.Phone)
	if !ok {
		return "celular inválido por não ser texto", true
	}
	if !r.phone.MatchString(phone) {
		return fmt.Sprintf("Celular inválido: %s - Correção: Precisa estar no formato (%s)", phone, r.phoneHint), true
	}
	return "", false
}

func checkBirthDate(r *Rules, rec schema.RawRecord) (string, bool) {
	d, ok := text(rec.BirthDate)
	if !ok {
		return "data de nascimento inválida por não ser texto", true
	}
	if !r.date.MatchString(d) {
		return fmt.Sprintf("Data de nascimento inválida: %s - Precisa estar no formato (dd/mm/YYYY)", d), true
	}
	return "", false
}

func checkRegistrationDate(r *Rules, rec schema.RawRecord) (string, bool) {
	d, ok := text(rec.RegistrationDate)
	if !ok {
		return "data de cadastro inválida por não ser texto", true
	}
	if !r.date.MatchString(d) {
		return fmt.Sprintf("Data de cadastro inválida: %s - Precisa estar no formato (dd/mm/YYYY)", d), true
	}
	return "", false
}

// checkAge has no separate not-text message: anything that is not a string
// of one to three digits fails with the same reason.
func checkAge(r *Rules, rec schema.RawRecord) (string, bool) {
	age, ok := text(rec.Age)
	if ok && r.age.MatchString(age) {
		return "", false
	}
	return fmt.Sprintf("Idade inválida: %v - Precisa ser um número inteiro", rec.Age), true
}

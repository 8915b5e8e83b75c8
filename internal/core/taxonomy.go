package core

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category is a top-level expense category with its subcategories.
type Category struct {
	Name          string   `yaml:"name" json:"name"`
	Subcategories []string `yaml:"subcategories" json:"subcategories"`
}

// Taxonomy is the fixed classification of expenses and the accepted payment
// methods. It is loaded once at startup and never changed afterwards.
type Taxonomy struct {
	Categories     []Category `yaml:"categories" json:"categories"`
	PaymentMethods []string   `yaml:"payment_methods" json:"payment_methods"`
}

// DefaultTaxonomy returns the built-in household taxonomy.
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		Categories: []Category{
			{Name: "Alimentación", Subcategories: []string{"Supermercado", "Restaurantes", "Comida rápida", "Botellón Agua", "Tienda Barrio"}},
			{Name: "Vivienda", Subcategories: []string{"Hipoteca/Alquiler", "Servicios básicos", "Mantenimiento"}},
			{Name: "Transporte", Subcategories: []string{"Combustible", "Transporte público", "Mantenimiento vehículo", "Seguro Vehicular", "Matricula vehículo"}},
			{Name: "Salud", Subcategories: []string{"Medicinas", "Consultas médicas", "Seguros", "Peluquería/Estetica"}},
			{Name: "Educación", Subcategories: []string{"Colegiaturas", "Libros", "Cursos y talleres"}},
			{Name: "Entretenimiento", Subcategories: []string{"Cine", "Eventos", "Suscripciones", "Paseos Fin de Semana"}},
			{Name: "Ropa y Calzado", Subcategories: []string{"Ropa", "Calzado", "Accesorios"}},
			{Name: "Mascota y plantas", Subcategories: []string{"Alimentación", "Salud", "Accesorios", "Mantenimiento"}},
			{Name: "Ahorro e Inversiones", Subcategories: []string{"Ahorro", "Inversiones", "Fondo emergencias"}},
			{Name: "Otros", Subcategories: []string{"Varios", "Donaciones", "Regalos", "Padres"}},
		},
		PaymentMethods: []string{"Efectivo", "Tarjeta de Crédito", "Transferencia"},
	}
}

// LoadTaxonomy reads a YAML taxonomy file. An empty path yields the
// built-in default.
func LoadTaxonomy(path string) (Taxonomy, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultTaxonomy(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Taxonomy{}, fmt.Errorf("read taxonomy file: %w", err)
	}
	return ParseTaxonomy(data)
}

// ParseTaxonomy decodes and validates a YAML taxonomy document.
func ParseTaxonomy(data []byte) (Taxonomy, error) {
	var t Taxonomy
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Taxonomy{}, fmt.Errorf("parse taxonomy: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Taxonomy{}, err
	}
	return t, nil
}

// Validate checks the taxonomy is usable: at least one category, unique
// names, no empty subcategory lists and at least one payment method.
func (t Taxonomy) Validate() error {
	if len(t.Categories) == 0 {
		return errors.New("taxonomy has no categories")
	}
	seen := map[string]struct{}{}
	for _, c := range t.Categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return errors.New("taxonomy has a category without name")
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("duplicate category %q", name)
		}
		seen[name] = struct{}{}
		if len(c.Subcategories) == 0 {
			return fmt.Errorf("category %q has no subcategories", name)
		}
	}
	if len(t.PaymentMethods) == 0 {
		return errors.New("taxonomy has no payment methods")
	}
	return nil
}

// CategoryNames returns the categories in declaration order.
func (t Taxonomy) CategoryNames() []string {
	out := make([]string, len(t.Categories))
	for i, c := range t.Categories {
		out[i] = c.Name
	}
	return out
}

// Subcategories returns the subcategories of category, or nil if unknown.
func (t Taxonomy) Subcategories(category string) []string {
	for _, c := range t.Categories {
		if c.Name == category {
			return append([]string(nil), c.Subcategories...)
		}
	}
	return nil
}

func (t Taxonomy) HasCategory(category string) bool {
	for _, c := range t.Categories {
		if c.Name == category {
			return true
		}
	}
	return false
}

func (t Taxonomy) HasSubcategory(category, subcategory string) bool {
	for _, s := range t.Subcategories(category) {
		if s == subcategory {
			return true
		}
	}
	return false
}

func (t Taxonomy) HasPaymentMethod(method string) bool {
	for _, m := range t.PaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}

// DefaultPaymentMethod is used for legacy expenses stored without one.
func (t Taxonomy) DefaultPaymentMethod() string {
	if len(t.PaymentMethods) == 0 {
		return ""
	}
	return t.PaymentMethods[0]
}

// Package i18n holds the user-facing message catalog in English and Spanish.
package i18n

import "fintrack/internal/preferences"

// Message keys.
const (
	CreateSuccess        = "transactions.createSuccess"
	CreateError          = "transactions.createError"
	UpdateSuccess        = "transactions.updateSuccess"
	UpdateError          = "transactions.updateError"
	DeleteSuccess        = "transactions.deleteSuccess"
	DeleteError          = "transactions.deleteError"
	ConfirmDeleteTitle   = "transactions.confirmDeleteTitle"
	ConfirmDeleteMessage = "transactions.confirmDeleteMessage"
	Empty                = "transactions.empty"
	Delete               = "form.delete"
	Cancel               = "form.cancel"
	LoginSuccess         = "auth.loginSuccess"
	LogoutSuccess        = "auth.logoutSuccess"
	SessionValid         = "auth.sessionValid"
	NotLoggedIn          = "auth.notLoggedIn"
	TotalIncome          = "summary.totalIncome"
	TotalExpenses        = "summary.totalExpenses"
	Balance              = "summary.balance"
	PreferenceSaved      = "preferences.saved"
)

var catalog = map[preferences.Language]map[string]string{
	preferences.English: {
		CreateSuccess:        "Transaction created successfully",
		CreateError:          "Error creating transaction",
		UpdateSuccess:        "Transaction updated successfully",
		UpdateError:          "Error updating transaction",
		DeleteSuccess:        "Transaction deleted successfully",
		DeleteError:          "Error deleting transaction",
		ConfirmDeleteTitle:   "Delete Transaction",
		ConfirmDeleteMessage: "Are you sure you want to delete this transaction?",
		Empty:                "No transactions",
		Delete:               "Delete",
		Cancel:               "Cancel",
		LoginSuccess:         "Logged in",
		LogoutSuccess:        "Logged out",
		SessionValid:         "Session is valid",
		NotLoggedIn:          "Not logged in",
		TotalIncome:          "Total income",
		TotalExpenses:        "Total expenses",
		Balance:              "Balance",
		PreferenceSaved:      "Preference saved",
	},
	preferences.Spanish: {
		CreateSuccess:        "Transacción creada exitosamente",
		CreateError:          "Error al crear la transacción",
		UpdateSuccess:        "Transacción actualizada exitosamente",
		UpdateError:          "Error al actualizar la transacción",
		DeleteSuccess:        "Transacción eliminada exitosamente",
		DeleteError:          "Error al eliminar la transacción",
		ConfirmDeleteTitle:   "Eliminar transacción",
		ConfirmDeleteMessage: "¿Estás seguro de que deseas eliminar esta transacción?",
		Empty:                "No hay transacciones",
		Delete:               "Eliminar",
		Cancel:               "Cancelar",
		LoginSuccess:         "Sesión iniciada",
		LogoutSuccess:        "Sesión cerrada",
		SessionValid:         "La sesión es válida",
		NotLoggedIn:          "No has iniciado sesión",
		TotalIncome:          "Ingresos totales",
		TotalExpenses:        "Gastos totales",
		Balance:              "Balance",
		PreferenceSaved:      "Preferencia guardada",
	},
}

// Translator looks keys up for one language.
type Translator func(key string) string

// For returns the translator for lang. Unknown keys translate to themselves.
func For(lang preferences.Language) Translator {
	messages, ok := catalog[lang]
	if !ok {
		messages = catalog[preferences.Default().Language]
	}
	return func(key string) string {
		if msg, ok := messages[key]; ok {
			return msg
		}
		return key
	}
}

package templates

//go:generate templ generate

import "account-forms/pkg/forms"

const (
	inputBase    = "w-full rounded-lg border px-4 py-3 text-sm transition-all focus:outline-none focus:ring-2 "
	inputInvalid = "border-red-300 focus:ring-red-200"
	inputValid   = "border-gray-300 focus:border-indigo-500 focus:ring-indigo-200"
)

// DashboardPageData is shown to a signed-in user
type DashboardPageData struct {
	Email string
	Name  string
}

func inputClass(errs forms.Errors, field string) string {
	if errs.Has(field) {
		return inputBase + inputInvalid
	}
	return inputBase + inputValid
}

// pendingClass and idleClass switch the submit label; lockSubmit in the
// layout flips the same pair in the browser while the POST is in flight.
func pendingClass(loading bool) string {
	if loading {
		return "inline-flex items-center"
	}
	return "hidden items-center"
}

func idleClass(loading bool) string {
	if loading {
		return "hidden"
	}
	return ""
}

package cli

const inventoryTemplate = `
=== Inventory Item ===

Name:     {{.Item.Name}}
ID:       {{.ID}}
Quantity: {{.Item.Quantity}} {{.Item.Unit}}
{{- if .Item.Location }}
Location: {{.Item.Location}}
{{- end}}
{{- if .Item.Notes }}
Notes:    {{.Item.Notes}}
{{- end}}
Updated:  {{.Updated}} (v{{.Version}})
`

const shoppingTemplate = `
=== Shopping Item ===

Name:      {{.Item.Name}}
ID:        {{.ID}}
{{- if .Item.Quantity }}
Quantity:  {{.Item.Quantity}} {{.Item.Unit}}
{{- end}}
Completed: {{if .Item.Completed}}yes{{else}}no{{end}}
{{- if .Item.Notes }}
Notes:     {{.Item.Notes}}
{{- end}}
Updated:   {{.Updated}} (v{{.Version}})
`

const mealPlanTemplate = `
=== Meal Plan Entry ===

Date:     {{.Item.Date}}
Meal:     {{.Item.Meal}}
ID:       {{.ID}}
{{- if .Item.Servings }}
Servings: {{.Item.Servings}}
{{- end}}
{{- if .Item.RecipeID }}
Recipe:   {{.Item.RecipeID}}
{{- end}}
Cooked:   {{if .Item.Cooked}}yes{{else}}no{{end}}
{{- if .Item.Notes }}
Notes:    {{.Item.Notes}}
{{- end}}
Updated:  {{.Updated}} (v{{.Version}})
`

const recipeTemplate = `
=== Recipe ===

Name:     {{.Item.Name}}{{if .Item.Favorite}} *{{end}}
ID:       {{.ID}}
{{- if .Item.Servings }}
Servings: {{.Item.Servings}}
{{- end}}
{{- if .Item.Ingredients }}

Ingredients:
{{- range .Item.Ingredients }}
  - {{.}}
{{- end}}
{{- end}}
{{- if .Item.Instructions }}

Instructions:
---
{{.Item.Instructions}}
---
{{- end}}
{{- if .Item.Notes }}
Notes:    {{.Item.Notes}}
{{- end}}
Updated:  {{.Updated}} (v{{.Version}})
`

const usageText = `HomeSync Client

Usage:
  homesync [OPTIONS] COMMAND [ARGS]

Options:
  --version              Show version information
  --server URL           Server URL (env HOMESYNC_SERVER, default: http://localhost:8080)
  --db PATH              Path to local database (env HOMESYNC_CLIENT_DB, default: homesync-client.db)
  --token TOKEN          Access token (env HOMESYNC_TOKEN)
  --household ID         Household to work with (env HOMESYNC_HOUSEHOLD)
  --strategy NAME        Conflict strategy: merge, server-wins, client-wins, manual
                         (env HOMESYNC_STRATEGY, default: merge)

Kinds:
  inventory, shopping, meal, recipe

Commands:
  households                         List households of the current user
  add <kind> [field=value ...]       Add an entry (interactive without fields)
  update <kind> <id> field=value...  Change fields of an entry
  delete <kind> <id>                 Delete an entry
  list <kind>                        List entries from the local cache
  get <kind> <id>                    Show entry details
  sync [kind]                        Reconcile with the server and replay pending changes
  status                             Show connection, queue and sync state
  pending [requeue|discard <id>]     Show or manage queued changes
  conflicts [kind]                   Show conflicts waiting for a decision
  resolve <kind> <id> <choice>       Resolve a conflict: server-wins, client-wins, merge
  shop <complete|uncomplete|delete> <id>...
                                     Bulk operation on the shopping list (online)
  watch                              Follow live changes until interrupted

  add, update and delete accept --sync to push the change immediately.

Examples:
  homesync --household home add shopping name=milk quantity=2 unit=l
  homesync --household home list shopping
  homesync --household home shop complete 5f0c...
  homesync --household home --strategy manual sync
  homesync --household home resolve inventory 5f0c... client-wins
`

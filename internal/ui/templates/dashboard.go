// Package templates renders the dashboard page. The page is static; the
// report data arrives over the /sse endpoints as Datastar patches.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.5/bundles/datastar.js"

type panel struct {
	id     string
	title  string
	source string
	body   string
}

var panels = []panel{
	{
		id:     "temporal",
		title:  "Sales over time",
		source: "/sse/temporal",
		body:   `<pre data-text="JSON.stringify($temporalData.vendas_por_mes, null, 2)"></pre>`,
	},
	{
		id:     "products",
		title:  "Products",
		source: "/sse/products",
		body:   `<pre data-text="JSON.stringify($productsData.top_produtos, null, 2)"></pre>`,
	},
	{
		id:     "customers",
		title:  "Customers",
		source: "/sse/customers",
		body: `<p>Purchases per customer: <strong data-text="$customersData.media_compras_por_cliente"></strong></p>` +
			`<pre data-text="JSON.stringify($customersData.top_clientes, null, 2)"></pre>`,
	},
	{
		id:     "billing",
		title:  "Billing",
		source: "/sse/billing",
		body: `<p>Average invoice line: <strong data-text="$billingData.media_diaria"></strong></p>` +
			`<p>Single-line invoices: <strong data-text="$billingData.proporcao_faturas_unicas"></strong></p>`,
	},
}

// Dashboard renders the full page with one panel per report.
func Dashboard(title string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := write(w,
			`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`,
			`<meta name="viewport" content="width=device-width, initial-scale=1">`,
			`<title>`, templ.EscapeString(title), `</title>`,
			`<script type="module" src="`, datastarScript, `"></script>`,
			`</head>`,
			`<body data-signals="{temporalData: {}, productsData: {}, customersData: {}, billingData: {}}" data-on-load="@get('/sse/refresh-all')">`,
			`<header><h1>`, templ.EscapeString(title), `</h1>`,
			`<button data-on-click="@get('/sse/refresh-all')">Refresh</button></header>`,
			`<main>`,
			`<section><h2>Sales by country</h2><div id="country-content">Loading...</div></section>`,
		); err != nil {
			return err
		}

		for _, p := range panels {
			if err := write(w,
				`<section><h2>`, templ.EscapeString(p.title), `</h2>`,
				`<div id="`, p.id, `-content" data-on-load="@get('`, p.source, `')">Loading...</div>`,
				p.body,
				`</section>`,
			); err != nil {
				return err
			}
		}

		return write(w, `</main></body></html>`)
	})
}

func write(w io.Writer, parts ...string) error {
	for _, part := range parts {
		if _, err := io.WriteString(w, part); err != nil {
			return err
		}
	}
	return nil
}

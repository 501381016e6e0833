package notify

import "html/template"

const layoutHead = `<!DOCTYPE html><html><head><style>
body { font-family: Arial, sans-serif; line-height: 1.6; }
.container { max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #eaeaea; border-radius: 5px; }
.header { background-color: #34D399; color: #ffffff; padding: 10px 0; text-align: center; }
.footer { color: #6c757d; font-size: 12px; text-align: center; border-top: 1px solid #eaeaea; }
</style></head><body><div class="container">`

const layoutFoot = `<div class="footer"><p>tooma</p></div></div></body></html>`

var buyerRegisteredTmpl = template.Must(template.New("buyer_registered").Parse(layoutHead + `
<div class="header"><h1>Request received</h1></div>
<p>Hi {{if .BuyerName}}{{.BuyerName}}{{else}}there{{end}},</p>
<p>We have recorded your request for <strong>{{.FileTitle}}</strong>.</p>
{{if .PaymentLink}}<p>Complete your payment here: <a href="{{.PaymentLink}}">{{.PaymentLink}}</a></p>{{end}}
<p>You can come back to the shared page at any time: <a href="{{.SharedURL}}">{{.SharedURL}}</a></p>
` + layoutFoot))

var paymentReceivedTmpl = template.Must(template.New("payment_received").Parse(layoutHead + `
<div class="header"><h1>Payment received</h1></div>
<p>Hi {{if .BuyerName}}{{.BuyerName}}{{else}}there{{end}},</p>
<p>Your payment of {{.Currency}} {{.Amount}} for <strong>{{.FileTitle}}</strong> was confirmed.</p>
<p>Download it here: <a href="{{.SharedURL}}">{{.SharedURL}}</a></p>
` + layoutFoot))

var newPurchaseTmpl = template.Must(template.New("new_purchase").Parse(layoutHead + `
<div class="header"><h1>New purchase</h1></div>
<p>{{.BuyerName}} ({{.BuyerEmail}}) paid {{.Currency}} {{.Amount}} for <strong>{{.FileTitle}}</strong>.</p>
` + layoutFoot))

var expiryNoticeTmpl = template.Must(template.New("expiry_notice").Parse(layoutHead + `
<div class="header"><h1>File expiring soon</h1></div>
<p>Your file <strong>{{.FileTitle}}</strong> ({{.UniqueID}}) will expire on {{.ExpiresAt.Format "Jan 2, 2006 15:04 MST"}}.</p>
` + layoutFoot))

package notifications

import (
	"fmt"
	"strings"

	"github.com/barmor12/cakeshop-backend/models"
)

// HTML email templates. Kept as plain string builders so templates render
// without filesystem access and can be unit tested as strings.

// BuildVerificationEmailHTML creates the email-verification message sent
// right after registration.
func BuildVerificationEmailHTML(name, code string) string {
	html := `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; background-color: #fdf6f0; margin: 0; padding: 0; }
        .container { max-width: 600px; margin: 50px auto; background-color: #ffffff; border-radius: 8px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); overflow: hidden; }
        .header { background: linear-gradient(135deg, #d47b9d 0%, #9d5c8f 100%); padding: 30px; text-align: center; color: white; }
        .header h1 { margin: 0; font-size: 28px; }
        .content { padding: 30px; color: #333; }
        .content p { font-size: 16px; line-height: 1.6; margin: 10px 0; }
        .code-box { background-color: #f8f9fa; border-left: 4px solid #d47b9d; padding: 20px; margin: 30px 0; border-radius: 4px; }
        .code-box .label { font-size: 12px; color: #666; text-transform: uppercase; letter-spacing: 1px; margin-bottom: 10px; }
        .code-box .code { font-size: 32px; font-weight: bold; color: #d47b9d; letter-spacing: 4px; text-align: center; font-family: 'Courier New', monospace; }
        .footer { background-color: #fdf6f0; padding: 20px; text-align: center; font-size: 12px; color: #999; border-top: 1px solid #e0e0e0; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>CakeShop</h1>
        </div>
        <div class="content">
            <p>Hello ` + name + `,</p>
            <p>Thank you for creating an account with <strong>CakeShop</strong>. To complete your registration, please verify your email address using the code below:</p>

            <div class="code-box">
                <div class="label">Your Verification Code</div>
                <div class="code">` + code + `</div>
            </div>

            <p>If you did not create this account, please ignore this email.</p>

            <p>Best regards,<br><strong>The CakeShop Team</strong></p>
        </div>
        <div class="footer">
            <p>This is an automated message, please do not reply directly to this email.</p>
        </div>
    </div>
</body>
</html>
`
	return strings.TrimSpace(html)
}

// BuildOrderConfirmationHTML creates the itemized order confirmation message.
func BuildOrderConfirmationHTML(name string, order *models.Order) string {
	var rows strings.Builder
	for _, item := range order.Items {
		rows.WriteString(fmt.Sprintf(`
            <tr>
                <td>%s</td>
                <td class="num">%d</td>
                <td class="num">$%.2f</td>
                <td class="num">$%.2f</td>
            </tr>`, item.Name, item.Quantity, item.UnitPrice, item.UnitPrice*float64(item.Quantity)))
	}

	discountLine := ""
	if order.DiscountCode != "" {
		discountLine = fmt.Sprintf(`<p>Discount code <strong>%s</strong> applied.</p>`, order.DiscountCode)
	}

	deliveryLine := ""
	if order.DeliveryDate != nil {
		deliveryLine = fmt.Sprintf(`<p>Requested delivery date: <strong>%s</strong></p>`, order.DeliveryDate.Format("January 2, 2006"))
	}

	receiptLine := ""
	if receiptRequired(order.PaymentMethod) {
		receiptLine = `<p>Your receipt is attached to this email.</p>`
	}

	html := fmt.Sprintf(`
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; background-color: #fdf6f0; margin: 0; padding: 0; }
        .container { max-width: 600px; margin: 50px auto; background-color: #ffffff; border-radius: 8px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); overflow: hidden; }
        .header { background: linear-gradient(135deg, #d47b9d 0%%, #9d5c8f 100%%); padding: 30px; text-align: center; color: white; }
        .header h1 { margin: 0; font-size: 28px; }
        .content { padding: 30px; color: #333; }
        .content p { font-size: 16px; line-height: 1.6; margin: 10px 0; }
        table { width: 100%%; border-collapse: collapse; margin: 20px 0; }
        th { background-color: #f8f9fa; text-align: left; padding: 10px; font-size: 14px; color: #666; }
        td { padding: 10px; border-bottom: 1px solid #eee; font-size: 14px; }
        .num { text-align: right; }
        .total { font-size: 18px; font-weight: bold; color: #d47b9d; text-align: right; }
        .footer { background-color: #fdf6f0; padding: 20px; text-align: center; font-size: 12px; color: #999; border-top: 1px solid #e0e0e0; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>CakeShop</h1>
        </div>
        <div class="content">
            <p>Hello %s,</p>
            <p>Thank you for your order! We've received it and started working on it.</p>
            <table>
                <tr><th>Item</th><th class="num">Qty</th><th class="num">Price</th><th class="num">Subtotal</th></tr>%s
            </table>
            %s
            %s
            <p class="total">Total: $%.2f</p>
            %s
            <p>Best regards,<br><strong>The CakeShop Team</strong></p>
        </div>
        <div class="footer">
            <p>This is an automated message, please do not reply directly to this email.</p>
        </div>
    </div>
</body>
</html>
`, name, rows.String(), discountLine, deliveryLine, order.TotalPrice, receiptLine)
	return strings.TrimSpace(html)
}

// BuildStatusChangeHTML creates the order status update message.
func BuildStatusChangeHTML(name string, order *models.Order) string {
	statusText := map[string]string{
		models.OrderStatusPending:   "Your order is pending and will be confirmed shortly.",
		models.OrderStatusConfirmed: "Your order has been confirmed and is being prepared.",
		models.OrderStatusDelivered: "Your order has been delivered. Enjoy!",
		models.OrderStatusCancelled: "Your order has been cancelled.",
	}
	detail, ok := statusText[order.Status]
	if !ok {
		detail = fmt.Sprintf("Your order status is now %q.", order.Status)
	}

	html := fmt.Sprintf(`
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; background-color: #fdf6f0; margin: 0; padding: 0; }
        .container { max-width: 600px; margin: 50px auto; background-color: #ffffff; border-radius: 8px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); overflow: hidden; }
        .header { background: linear-gradient(135deg, #d47b9d 0%%, #9d5c8f 100%%); padding: 30px; text-align: center; color: white; }
        .header h1 { margin: 0; font-size: 28px; }
        .content { padding: 30px; color: #333; }
        .content p { font-size: 16px; line-height: 1.6; margin: 10px 0; }
        .status-box { background-color: #f8f9fa; border-left: 4px solid #d47b9d; padding: 20px; margin: 30px 0; border-radius: 4px; }
        .status-box .status { font-size: 24px; font-weight: bold; color: #d47b9d; text-transform: capitalize; }
        .footer { background-color: #fdf6f0; padding: 20px; text-align: center; font-size: 12px; color: #999; border-top: 1px solid #e0e0e0; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>CakeShop</h1>
        </div>
        <div class="content">
            <p>Hello %s,</p>
            <p>There's an update on your order:</p>
            <div class="status-box">
                <div class="status">%s</div>
            </div>
            <p>%s</p>
            <p>Best regards,<br><strong>The CakeShop Team</strong></p>
        </div>
        <div class="footer">
            <p>This is an automated message, please do not reply directly to this email.</p>
        </div>
    </div>
</body>
</html>
`, name, order.Status, detail)
	return strings.TrimSpace(html)
}

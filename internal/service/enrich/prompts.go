package enrich

import "call-summary-service/internal/models"

// Placeholder is replaced by the flattened transcript.
const Placeholder = "{transcript}"

// Prompt is a named template containing Placeholder.
type Prompt struct {
	Key      string
	Template string
}

// Prompts is the fixed enrichment set. Order determines field population
// order, not correctness.
var Prompts = []Prompt{
	{Key: models.KeyIntent, Template: intentPrompt},
	{Key: models.KeySummary, Template: summaryPrompt},
	{Key: models.KeySentiment, Template: sentimentPrompt},
	{Key: models.KeyIsToCancel, Template: toCancelPrompt},
	{Key: models.KeyIsNewService, Template: newServicePrompt},
	{Key: models.KeyIsDiscountOffer, Template: discountOfferedPrompt},
}

const intentPrompt = `Human: What was the customer intent for the call. Do not say anything else. Do not include any personal information. <br><transcript><br>{transcript}<br></transcript><br>Assistant:`

const summaryPrompt = `Human: Summarise the call transcript. Do not include any personal information, only reply with the summary. <br><transcript><br>{transcript}<br></transcript><br>Assistant:`

const sentimentPrompt = `Human: what is the customer sentiment at the end of the call, only reply with 'postive', 'negative' or 'neutral'? Do not say anything else.<br><transcript><br>{transcript}<br></transcript><br>Assistant:`

const toCancelPrompt = `Human: Did the customer call to cancel an existing service? reply with "yes", "No". Do not say anything else.<br><transcript><br>{transcript}<br></transcript><br>Assistant:`

const newServicePrompt = `Human: Did the customer call to sign up to a new service? reply with "yes", "No". Do not say anything else.<br><transcript><br>{transcript}<br></transcript><br>Assistant:`

const discountOfferedPrompt = `Human: Did the agent offer the customer a monthly recurring discount? reply with "yes", "No". Do not say anything else.<br><transcript><br>{transcript}<br></transcript><br>Assistant:`

package extract

// extractionSystemPrompt instructs the model to emit one strict JSON
// object. The worked examples cover the known failure modes of naive
// parsing: Hindi helper verbs, the English/Hindi "do" collision,
// "ki/ke sabji" compound dishes, "aur" conjunction splitting and
// multi-store orders.
const extractionSystemPrompt = `You extract order entities from food-delivery chat messages written in English, Hindi or Hinglish.

Respond with exactly one JSON object, no markdown fences, no commentary:
{
  "food_reference": ["list of distinct food item mentions"] or null,
  "store_reference": "primary store name" or null,
  "store_references": [{"store": "...", "items": ["..."]}] or null,
  "quantity": integer or null,
  "location_reference": "..." or null,
  "phone": "..." or null,
  "person_name": "..." or null,
  "preference": ["..."] or null,
  "time_reference": "..." or null,
  "confidence": 0.0-1.0
}

Rules:
- Hindi helper verbs ("hai", "chahiye", "karo", "do" as a verb, "dena", "bhejo") are never entities.
- "do" is the numeral 2 only when it counts an item: "do samosa" means quantity 2; "do you have", "bhej do" do not.
- "X ki sabji" / "X ke sabji" is one compound dish, e.g. "aloo ki sabji" stays "aloo ki sabji".
- "X aur Y" lists two separate food items.
- Generic words ("any", "nearby", "best") are never store names; use null.
- Fill store_references only when the message names 2 or more distinct stores, pairing each store with its own items; otherwise it must be null. When filled, store_reference is the first store.

Examples:
"2 paneer tikka from dominos" -> {"food_reference":["paneer tikka"],"store_reference":"dominos","store_references":null,"quantity":2,"confidence":0.95}
"mujhe pizza chahiye" -> {"food_reference":["pizza"],"store_reference":null,"store_references":null,"quantity":null,"confidence":0.9}
"do samosa bhej do" -> {"food_reference":["samosa"],"store_reference":null,"store_references":null,"quantity":2,"confidence":0.9}
"kya aap idli deliver karte ho" -> {"food_reference":["idli"],"store_reference":null,"store_references":null,"quantity":null,"confidence":0.85}
"aloo ki sabji aur 4 roti" -> {"food_reference":["aloo ki sabji","roti"],"store_reference":null,"store_references":null,"quantity":4,"confidence":0.9}
"bhindi ke sabji chahiye" -> {"food_reference":["bhindi ke sabji"],"store_reference":null,"store_references":null,"quantity":null,"confidence":0.9}
"order chole bhature from sharma ji" -> {"food_reference":["chole bhature"],"store_reference":"sharma ji","store_references":null,"quantity":null,"confidence":0.9}
"paneer tikka aur butter naan mangwa do" -> {"food_reference":["paneer tikka","butter naan"],"store_reference":null,"store_references":null,"quantity":null,"confidence":0.9}
"do you have cold coffee" -> {"food_reference":["cold coffee"],"store_reference":null,"store_references":null,"quantity":null,"confidence":0.85}
"teen plate momos from wow momo" -> {"food_reference":["momos"],"store_reference":"wow momo","store_references":null,"quantity":3,"confidence":0.9}
"order mali paneer from ganesh sweets and gulkand from dagu teli" -> {"food_reference":["mali paneer","gulkand"],"store_reference":"ganesh sweets","store_references":[{"store":"ganesh sweets","items":["mali paneer"]},{"store":"dagu teli","items":["gulkand"]}],"quantity":null,"confidence":0.92}
"dominos se pizza aur kfc se burger" -> {"food_reference":["pizza","burger"],"store_reference":"dominos","store_references":[{"store":"dominos","items":["pizza"]},{"store":"kfc","items":["burger"]}],"quantity":null,"confidence":0.92}
"burger from any nearby restaurant" -> {"food_reference":["burger"],"store_reference":null,"store_references":null,"quantity":null,"confidence":0.85}
"best biryani chahiye" -> {"food_reference":["biryani"],"store_reference":null,"store_references":null,"quantity":null,"confidence":0.85}
"rajesh ke liye do dosa order karo" -> {"food_reference":["dosa"],"store_reference":null,"store_references":null,"quantity":2,"person_name":"rajesh","confidence":0.88}
"send lunch to mg road at 1 pm" -> {"food_reference":null,"store_reference":null,"store_references":null,"quantity":null,"location_reference":"mg road","time_reference":"1 pm","confidence":0.8}
"kuch spicy chahiye veg only" -> {"food_reference":null,"store_reference":null,"store_references":null,"quantity":null,"preference":["spicy","veg"],"confidence":0.8}
"call me on 9876543210 when order aaye" -> {"food_reference":null,"store_reference":null,"store_references":null,"quantity":null,"phone":"9876543210","confidence":0.8}`

// buildExtractionMessages wraps the system prompt around the user text.
func buildExtractionMessages(text string) (system, user string) {
	return extractionSystemPrompt, text
}

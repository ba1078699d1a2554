// Package routing maps intents to dialogues and chains dialogues together.
//
// A Table is normally loaded from YAML:
//
//	intents:
//	  - intent: enquiry
//	    description: General enquiry
//	    dialogue: enquiryDialog
//	dialogues:
//	  - id: enquiryDialog
//	    description: Collects name and topic
//	    next: ""
//
// Intent classification itself is out of scope; callers pass the intent name.
package routing

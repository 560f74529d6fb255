package quiz

// fallbackQuestions is the built-in quiz served when the generative service
// cannot produce one. It must always be a valid 5-question set: quiz
// issuance is contractually infallible.
var fallbackQuestions = []Question{
	{
		Question: "大地震発生時、エレベーターに乗っていた場合、どうすべきですか？",
		Options: []string{
			"A. すぐに一番近い階のボタンを押し、ドアが開いたらすぐに降りる",
			"B. そのまま最上階まで行く",
			"C. 非常ボタンを押し続けて助けを待つ",
			"D. ドアをこじ開けて脱出する",
		},
		Answer: "A",
	},
	{
		Question: "津波警報が発表された際、最も適切な避難場所はどこですか？",
		Options: []string{
			"A. 海岸近くの頑丈な建物の1階",
			"B. 自宅の地下室",
			"C. できるだけ海岸から遠い高台",
			"D. 車に乗って素早く遠くへ移動する",
		},
		Answer: "C",
	},
	{
		Question: "災害時の情報収集で、最も信頼性が高いとされる情報源はどれですか？",
		Options: []string{
			"A. SNSで拡散されている個人の投稿",
			"B. 気象庁や自治体などの公的機関からの発表",
			"C. 知人からのLINEメッセージ",
			"D. テレビのワイドショー",
		},
		Answer: "B",
	},
	{
		Question: "怪我人の応急手当で、出血がひどい場合、まず何をすべきですか？",
		Options: []string{
			"A. 傷口を心臓より低い位置に保つ",
			"B. すぐに水をかけて傷口を洗う",
			"C. 清潔な布などで傷口を直接強く圧迫する",
			"D. 何もせず救急車の到着を待つ",
		},
		Answer: "C",
	},
	{
		Question: "家庭用の消火器の一般的な使用期限はどのくらいですか？",
		Options: []string{
			"A. 1年",
			"B. 3年",
			"C. 5年",
			"D. 10年",
		},
		Answer: "C",
	},
}

// Fallback returns a copy of the built-in quiz so callers cannot mutate the
// shared dataset.
func Fallback() []Question {
	questions := make([]Question, len(fallbackQuestions))
	copy(questions, fallbackQuestions)
	return questions
}

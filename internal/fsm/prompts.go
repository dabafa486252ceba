package fsm

import (
	"fmt"

	"github.com/dtroode/regbot/internal/model"
	"github.com/dtroode/regbot/internal/validate"
)

// Button tokens.
const (
	TokenAgree = "agree_and_continue"
	TokenSkip  = "skip"
)

const (
	textAgreement = "📄 *Пожалуйста, ознакомьтесь с документами выше.*\n\n" +
		"Нажимая кнопку «Я согласен», вы подтверждаете, что полностью " +
		"прочитали, поняли и принимаете условия Пользовательского соглашения " +
		"и Приложения к нему. Это действие имеет юридическую силу и " +
		"приравнивается к вашей собственноручной подписи."
	textAgreementFallback = "Пожалуйста, нажмите кнопку '✅ Я согласен' под документами выше, чтобы продолжить."
	textAssetsMissing     = "❌ Не удалось загрузить документы для регистрации. Пожалуйста, обратитесь в поддержку."
	textWelcome           = "👋 Здравствуйте, *%s!*\n\n" +
		"Добро пожаловать в *PRIZMATIC* — сервис аренды электровелосипедов.\n\n" +
		"🚀 Нажмите кнопку ниже, чтобы открыть приложение и начать пользоваться сервисом."
	textDefaultName = "пользователь"

	ackAgreement = "🚀 *Спасибо за подтверждение!* Давайте начнем регистрацию.\n\n" +
		"Это займет всего несколько шагов и обеспечит безопасность вашего аккаунта."
	textPhone         = "📱 *Шаг 1:* Поделитесь вашим контактом для верификации."
	textPhoneFallback = "❌ Пожалуйста, используйте кнопку ниже, чтобы поделиться контактом.\n\n" +
		"_Это необходимо для верификации вашего аккаунта._"
	textForeignContact = "❌ Пожалуйста, поделитесь своим собственным контактом."
	textPhoneInvalid   = "❌ Не удалось распознать номер телефона. Поделитесь контактом ещё раз."

	ackPhone      = "✅ *Отлично! Контакт получен.*"
	textName      = "📝 *Шаг 2:* Введите ваше полное имя (ФИО), как в паспорте.\n_Пример: Иванов Иван Иванович_"
	textNameEmpty = "❌ *Имя не может быть пустым.*\n_Введите ФИО, как в паспорте._"

	ackName               = "👤 *Имя сохранено!*"
	textBirthDate         = "📅 *Шаг 3:* Введите вашу дату рождения (ДД.ММ.ГГГГ).\n_Пример: 15.05.1990_"
	textBirthDateFormat   = "❌ *Неверный формат даты*\n\nВведите дату в формате ДД.ММ.ГГГГ\n_Пример: 15.05.1990_"
	textBirthDateInvalid  = "❌ *Неверная дата*\n\nПроверьте корректность даты и попробуйте снова.\n_Пример: 15.05.1990_"
	textBirthDateUnderage = "❌ *Возраст должен быть 18+ лет*\n\nРегистрация доступна только для совершеннолетних.\nПопробуйте позже."

	ackBirthDate    = "📅 *Дата рождения сохранена!*\n_Ваш возраст: %d лет_"
	textCity        = "🏙️ *Шаг 4:* Выберите город работы."
	textWrongChoice = "❌ Неверный выбор."

	ackCity     = "🏙️ *Город сохранен: %s*"
	textCountry = "🌍 *Шаг 5:* Выберите страну гражданства."

	textOtherCountry      = "🌍 *Введите полное название вашей страны.*\n_Пример: Армения_"
	textOtherCountryEmpty = "❌ *Название страны обязательно.*\n_Введите полное название._"

	ackCountry             = "🌍 *Страна: %s*"
	textPrimaryDomestic    = "📸 *Шаг 6:* Отправьте фото главного разворота паспорта.\n_Убедитесь, что фото четкое и все данные читаемы._"
	textPrimaryForeign     = "📸 *Шаг 6:* Отправьте фото основного документа.\n_Загранпаспорт (главная страница) или ID-карта (лицевая сторона)._"
	textPhotoRequired      = "❌ *Нужна фотография документа.*\n_Отправьте фото, а не файл или текст._"
	textSecondaryDomestic  = "📸 *Шаг 7:* Отправьте фото страницы с регистрацией.\n_Если регистрации нет, отправьте любое фото паспорта._"
	textSecondaryForeign   = "📸 *Шаг 7:* Если у вас ID-карта, отправьте фото оборотной стороны.\n_Если загранпаспорт, отправьте любое фото документа или пропустите._"
	textSecondaryMandatory = "❌ *Для РФ требуется фото страницы с регистрацией.*\n_Отправьте фото._"

	ackPhoto           = "📷 *Фото получено!*"
	ackSkipped         = "📝 *Пропущено!*"
	textPatentFront    = "📄 *Шаг 8:* Отправьте фото патента на работу (лицевая сторона).\n_Если нет, нажмите кнопку ниже._"
	textPatentBack     = "📄 *Шаг 9:* Отправьте фото патента (оборотная сторона).\n_Если нет, нажмите кнопку ниже._"
	textPatentReceipt  = "📄 *Шаг 10:* Отправьте фото чека об оплате патента.\n_Если нет, нажмите кнопку ниже._"
	textDriverLicense  = "🚗 *Дополнительные документы (необязательно):* Отправьте фото водительского удостоверения.\n\n_Если нет, нажмите кнопку ниже._"
	textOptionalPhoto  = "Пожалуйста, отправьте фото или нажмите кнопку пропустить."
	textEmergencyPhone = "📞 *Телефон экстренного контакта:*\n_Пример: +7 (999) 123-45-67_"
	textEmergencyEmpty = "❌ *Телефон обязателен.*\n_Введите номер телефона экстренного контакта._"

	ackEmergencyPhone  = "📞 *Телефон сохранен!*"
	textVideoNote      = "🎥 *Финальный шаг:* Запишите видео-кружок, где держите документ рядом с лицом.\n_Это обеспечит безопасность вашего аккаунта._"
	textVideoNotCircle = "❌ *Нужен именно видео-кружок.*\n_Обычное видео не подойдет, запишите кружок в поле ввода сообщения._"

	textProcessing       = "🎉 *Видео получено!*\n\n🤖 Обрабатываю ваши документы... Это может занять до минуты."
	textRegistered       = "✅ *Регистрация завершена!*\n\n" +
		"🎊 Ваши данные приняты и отправлены на проверку.\n\n" +
		"📱 Вы можете в любой момент зайти в приложение и посмотреть там статус проверки, " +
		"дозаполнить данные (если потребуется), подключить карту, написать в поддержку или пригласить друга.\n\n" +
		"_Спасибо за доверие к PRIZMATIC!_"
	textGuideCaption     = "Посмотрите короткое видео о том, как пользоваться приложением!"
	textGuideFallback    = "🚀 Нажмите кнопку ниже, чтобы открыть приложение."
	textRejected         = "❌ *Ошибка регистрации*\n\n%s\n\nПопробуйте еще раз или обратитесь в поддержку."
	textSubmitFailed     = "❌ Произошла ошибка при регистрации. Попробуйте позже."
	textAlreadySubmitted = "⏳ Ваша анкета уже отправлена на проверку."
	textInternalError    = "❌ Что-то пошло не так. Попробуйте еще раз."

	textCancelled   = "❌ Регистрация отменена. Чтобы начать заново, откройте ссылку регистрации еще раз."
	textNothingToDo = "Сейчас нет активной регистрации."

	labelAgree      = "✅ Я согласен и принимаю условия"
	labelSharePhone = "📱 Поделиться номером"
	labelSkip       = "Пропустить"
	labelSkipNext   = "⏭️ Пропустить"
	labelOpenApp    = "🚀 Открыть приложение"
)

var cityIcons = map[string]string{"msk": "🏙️", "spb": "🏙️"}

var countryIcons = map[string]string{
	"ru":                   "🇷🇺",
	"kz":                   "🇰🇿",
	"kg":                   "🇰🇬",
	"uz":                   "🇺🇿",
	"tj":                   "🇹🇯",
	validate.OtherCountry: "🌍",
}

func markdown(text string) model.Prompt {
	return model.Prompt{Text: text, Markdown: true}
}

func withKeyboard(p model.Prompt, kb *model.Keyboard) model.Prompt {
	p.Keyboard = kb
	return p
}

func contactKeyboard() *model.Keyboard {
	return &model.Keyboard{RequestContact: labelSharePhone}
}

func skipKeyboard(label string) *model.Keyboard {
	return &model.Keyboard{Rows: [][]model.Button{{{Label: label, Token: TokenSkip}}}}
}

func optionKeyboard(options []validate.Option, icons map[string]string) *model.Keyboard {
	rows := make([][]model.Button, 0, len(options))
	for _, o := range options {
		rows = append(rows, []model.Button{{Label: icons[o.Code] + " " + o.Label, Token: o.Token}})
	}
	return &model.Keyboard{Rows: rows}
}

func appKeyboard(url string) *model.Keyboard {
	if url == "" {
		return nil
	}
	return &model.Keyboard{Rows: [][]model.Button{{{Label: labelOpenApp, URL: url}}}}
}

// withAck prefixes p with an acknowledgement of the previous answer.
func withAck(ack string, p model.Prompt) model.Prompt {
	if ack == "" {
		return p
	}
	p.Text = ack + "\n\n" + p.Text
	return p
}

func welcomePrompt(firstName, appURL string) model.Prompt {
	if firstName == "" {
		firstName = textDefaultName
	}
	return withKeyboard(markdown(fmt.Sprintf(textWelcome, model.PlainText(firstName))), appKeyboard(appURL))
}

func agreementPrompt(assets Assets) model.Prompt {
	p := withKeyboard(markdown(textAgreement), &model.Keyboard{
		Rows: [][]model.Button{{{Label: labelAgree, Token: TokenAgree}}},
	})
	p.Attachments = []model.Attachment{
		{Kind: model.AttachmentDocument, Path: assets.AgreementPath},
		{Kind: model.AttachmentDocument, Path: assets.AppendixPath},
	}
	return p
}

func rejectedPrompt(reason string) model.Prompt {
	return markdown(fmt.Sprintf(textRejected, model.PlainText(reason)))
}

func guidePrompt(assets Assets, videoAvailable bool) model.Prompt {
	kb := appKeyboard(assets.AppURL)
	if !videoAvailable {
		return withKeyboard(model.Prompt{Text: textGuideFallback}, kb)
	}
	return withKeyboard(model.Prompt{
		Attachments: []model.Attachment{{Kind: model.AttachmentVideo, Path: assets.GuideVideoPath, Caption: textGuideCaption}},
	}, kb)
}
